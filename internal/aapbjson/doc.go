// Package aapbjson defines the AAPB-JSON transcript format and converts MMIF
// speech recognition views into it.
//
// A view qualifies as ASR output when its metadata declares Sentence,
// TimeFrame, Alignment, and TextDocument annotations. Each Sentence becomes a
// Part timed by its own TimeFrame or by the TimeFrames of its first and last
// tokens; the document id is the AAPB GUID of the source media.
package aapbjson
