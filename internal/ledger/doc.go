// Package ledger records the outcome of every processed transcript in an
// embedded SQLite database.
//
// The ledger is optional. Batch cleanup writes one entry per input file when
// [ledger] enabled is set or --ledger is passed, and "aapb history" reads the
// most recent entries back. The schema is versioned; a database created by a
// different version is rejected with ErrSchemaMismatch rather than migrated.
package ledger
