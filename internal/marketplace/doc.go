// Package marketplace queries eBay's Browse API for sold-condition listing
// prices. Access tokens come from the client-credentials OAuth flow and are
// cached until shortly before expiry.
package marketplace
