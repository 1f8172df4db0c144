// Package services defines the shared error taxonomy used by session
// components and the helpers that keep failure classification uniform.
//
// Errors are tagged with one of the exported sentinel markers at the point
// of failure; the session state machine inspects the marker to decide
// whether a failure is fatal (spawn, encoder crash), isolated to one chunk
// (transcription), or best-effort (cleanup). No error crosses the session
// control surface: callers always observe failures as status data.
package services
