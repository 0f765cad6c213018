// Package mmif is a read-only model of MMIF (Multi-Media Interchange Format)
// documents produced by CLAMS pipelines.
//
// Only the parts needed to project ASR output are modelled: top-level
// documents, views with their "contains" metadata, annotations with loosely
// typed properties, and Alignment-based lookups between annotations. Types are
// compared by short name ("TimeFrame", "Sentence") so vocabulary versions do
// not matter. Nothing in this package constructs or mutates MMIF.
package mmif
