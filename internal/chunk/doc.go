// Package chunk discovers completed audio segments written by the
// segmenter process, in monotonically increasing index order.
//
// Discovery is poll-based: each poll scans a bounded lookahead window past
// the watermark, applies a settle delay so half-written files are not
// consumed, and claims each index at most once. A directory notification
// watch, when available, only shortens the wait between polls; it never
// claims chunks by itself, so behaviour degrades gracefully to plain
// polling.
package chunk
