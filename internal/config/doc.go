// Package config loads, normalizes, and validates the TOML configuration.
// Missing files fall back to defaults so the CLI works out of the box;
// credentials can come from the environment instead of the file.
package config
