// Package client contains the client-side gRPC API of the account service.
//
// # Overview
//
// GRPCClient manages a connection, injects the bearer access token via an
// interceptor, transparently refreshes it once when the server answers
// Unauthenticated, and maps gRPC status codes to sentinel errors.
//
// # Error Handling
//
// Transport conditions are exposed as ErrUnavailable, ErrUnauthorized and
// ErrForbidden. Domain conditions map to the shared sentinels in
// internal/common (ErrUserNotFound, ErrDuplicateUsername, ErrValidation).
// Match them with errors.Is.
//
// GRPCClient is safe for concurrent use.
package client
