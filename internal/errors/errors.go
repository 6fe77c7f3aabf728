// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// This typically results from validation failures or incorrect request parameters.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrValidationRejected indicates that the command security validator refused a server launch.
	// Fatal for that connection attempt and never auto-retried; the wrapped message names the
	// blocked token, flag, or package so the caller can self-remediate.
	// Recommended to map to HTTP 403 Forbidden.
	ErrValidationRejected = errors.New("launch rejected by security validation")

	// ErrConnectionFailed indicates that establishing a transport or completing the MCP handshake
	// with a server failed. The wrapped message carries a registry-enriched diagnosis.
	// Not auto-retried by the core.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAlreadyConnected indicates a connect attempt for a server id that already has a live
	// connection. Callers must disconnect first; connections are never silently replaced.
	// Recommended to map to HTTP 409 Conflict.
	ErrAlreadyConnected = errors.New("server already connected")

	// ErrNotConnected indicates an operation against a server id with no live connection.
	// This is an immediate caller error and is raised before any I/O is performed.
	// Recommended to map to HTTP 404 Not Found.
	ErrNotConnected = errors.New("server not connected")

	// ErrToolListFailed indicates that listing tools from an MCP server failed.
	// This represents a communication or protocol error with the external MCP server.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolListFailed = errors.New("tool list failed")

	// ErrToolNotFound indicates that no tool exists under the requested bridge key.
	// The namespace is rediscovered per request, so a recently disabled server's
	// tools disappear rather than erroring.
	// Recommended to map to HTTP 404 Not Found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExecutionFailed indicates that a remote tool ran and reported an error.
	// Kept distinct from ErrConnectionFailed and ErrNotConnected so orchestration can
	// retry just the call without reconnecting.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrRegistryUnavailable indicates that the remote package registry could not be loaded.
	// Never fatal: callers fall back to the embedded catalog.
	ErrRegistryUnavailable = errors.New("package registry unavailable")

	// ErrHealthNotTracked indicates that no health record exists for the specified server.
	// This occurs when querying health for a server that has never produced an event.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("server health is not being tracked")
)
