// Package logging assembles the structured slog loggers used by the aapb
// command and its internal packages.
//
// It owns the console and JSON handlers, parses level and format settings
// from config, and tees every record down to debug into a JSON log file when
// paths.log_dir is set. Context helpers tag lines with the run id, subcommand,
// and input path stored by the services package, so per-file records from a
// batch can be told apart. NewNop provides a discard logger for tests and
// library callers that pass no logger.
package logging
