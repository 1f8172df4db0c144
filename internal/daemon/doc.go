// Package daemon hosts the long-running livecap process: single-instance
// locking, the session registry, and the HTTP control API.
package daemon
