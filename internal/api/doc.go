// Package api defines the session control surface shared by the HTTP
// server and the IPC layer: JSON-facing DTOs and the service that drives
// the session registry.
package api
