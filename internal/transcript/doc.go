// Package transcript cleans AAPB/NewsHour transcripts and extracts speaker
// spans from them.
//
// Cleanup is an ordered Pipeline of Steps: section titles, bracketed asides,
// then the speaker marker cascade, finishing with per-line trimming. Every
// step is a pure text transform built from an immutable Rules value, so a
// compiled Pipeline can be shared across goroutines.
//
// Span extraction is independent of cleanup and always runs on the original
// text; offsets in a Span are byte offsets into that string.
package transcript
