// Package process wraps the lifecycle of one external child process: spawn
// in an isolated process group, non-blocking liveness polling, and
// graceful-then-forced termination of the whole group.
//
// Termination is strictly best effort. Signal and close failures during
// teardown are swallowed so that session cleanup can always run to
// completion; the final wait is unbounded so no zombie is left behind.
package process
