// Package services defines shared utilities consumed by the transcript
// commands and the batch driver.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, subcommand names, and input
//     paths for logging.
//   - Structured error markers plus the Wrap helper that let the batch driver
//     decide between skipping an item and aborting the run.
//
// Use these helpers when wiring new commands so error handling and
// observability stay uniform across the tools.
package services
