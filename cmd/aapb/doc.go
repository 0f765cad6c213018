// Package main hosts the aapb CLI entrypoint and command graph.
//
// Each subcommand wraps one utility from the internal packages: transcript
// cleanup and speaker spans, GUID extraction, MMIF to AAPB-JSON conversion,
// gold and prediction retrieval, and the processed-file history. The command
// context resolves configuration and logging once per invocation and stamps
// every log record with a run id.
package main
