// Package ui renders batch progress and inspection reports for terminal users.
//
// Rendering is separate from the batch core: the renderers here only consume
// progress events and finished reports, so the same results can be printed,
// exported, or asserted on in tests.
package ui
