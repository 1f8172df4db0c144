// Package session coordinates one live transcription: the audio segmenter,
// chunk discovery, recognition, the subtitle store, and the supervised
// burn-in encoder. Sessions are registered by id and driven through
// Start, Stop, and Cleanup.
package session
