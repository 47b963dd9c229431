package auth

import "errors"

var (
	// ErrInvalidCredentials indicates a password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a token is malformed, has a bad signature, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrSessionRevoked indicates the presented refresh token is not the
	// currently stored one: it was superseded by a newer login/refresh or
	// cleared by logout.
	ErrSessionRevoked = errors.New("refresh token superseded or revoked")
)

// ValidationError reports malformed or missing input rejected before any
// storage or upload call.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
