// Package encoder supervises the long-running burn-in encoder process. It
// owns launch verification, cadence-based restarts that pick up the latest
// subtitle file, and teardown.
package encoder
