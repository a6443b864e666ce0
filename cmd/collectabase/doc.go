// Command collectabase resolves market prices for physical games and
// consoles, maintains the local price catalog, and records valuation history.
package main
