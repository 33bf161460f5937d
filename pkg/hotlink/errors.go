package hotlink

import "errors"

var (
	ErrSecretRequired   = errors.New("signing secret is required")
	ErrInvalidMaxAge    = errors.New("token max age must be positive")
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = errors.New("signature mismatch")
	ErrTokenMismatch    = errors.New("token does not match file or client")
	ErrTokenExpired     = errors.New("token expired")
)
