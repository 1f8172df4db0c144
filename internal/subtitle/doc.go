// Package subtitle holds the ordered cue collection for a session and keeps
// its on-disk SRT rendition current. One writer per store; snapshots are
// safe for concurrent readers.
package subtitle
