// Package store persists session records and their cues in SQLite so the
// control surface can answer status queries across daemon restarts.
package store
