// Package preflight provides readiness checks for the directories and
// endpoints the AAPB utilities write to or call.
//
// Batch cleanup checks its output directory before processing the first
// file, and "aapb config validate" runs RunAll to report every configured
// path and endpoint. Checks return a Result rather than an error so callers
// can render all of them at once.
package preflight
