package token

import "errors"

// Validation errors. Callers branch on these; validation never panics on the
// hot path.
var (
	// ErrMalformed indicates the token is structurally invalid.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired indicates the token is past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrSignatureInvalid indicates the signature does not verify against
	// the shared secret.
	ErrSignatureInvalid = errors.New("token: signature invalid")
)
