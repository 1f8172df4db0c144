// Package logging assembles the structured slog loggers used across livecap
// components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so session workers, the encoder
// supervisor, and the daemon tag log lines with the same shape. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
