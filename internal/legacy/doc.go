// Package legacy holds the hand-written per-stage generators that predate the
// rule document.
//
// They are not used to produce output. The conformance tests run them next to
// the generic engine over the embedded pcpip document and fail on any
// difference, so the document can be trusted to reproduce the historical
// tables exactly.
package legacy
