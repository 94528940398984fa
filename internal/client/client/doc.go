// Package client is the gophauth backend client used by the session
// controller and the phone credential provider.
//
// # Overview
//
// Client is the transport-agnostic contract; GRPCClient implements it over
// gophauth.IdentityService with JSON-encoded messages. Session tokens are
// attached per call in the access_token metadata key, and calls without a
// deadline get the client's default request timeout.
//
// # Error Handling
//
// gRPC statuses are mapped back to the sentinel errors of package common,
// first by message text, then by status code, so callers can use errors.Is.
package client
