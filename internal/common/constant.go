// Package common contains header names and small helpers shared by the
// client packages.
package common

const (
	// AuthorizationHeader carries the bearer credential.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// BearerScheme prefixes the token in AuthorizationHeader.
	BearerScheme = "Bearer"

	// DefaultTokenType is assumed when the backend omits token_type.
	DefaultTokenType = "bearer"
)
