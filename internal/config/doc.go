// Package config loads, normalizes, and validates the TOML configuration
// shared by every AAPB utility command.
//
// It owns the default pattern tables for transcript cleanup (section titles
// and speaker title abbreviations), retriever endpoints, ledger location, and
// logging options. Path fields are expanded so downstream code can rely on
// absolute paths, and credentials fall back to environment variables when the
// file leaves them blank.
package config
