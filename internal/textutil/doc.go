// Package textutil provides filename sanitization for paths derived from
// catalog identifiers and remote names.
package textutil
