// Package batch runs the transcript cleanup over a file or a directory of
// transcripts and writes one cleaned .txt per input.
//
// Inputs that lack transcript text or cannot be parsed are logged, counted
// and skipped; any other failure aborts the run. Outputs never overwrite an
// existing file: a taken name gets a numeric suffix instead.
package batch
