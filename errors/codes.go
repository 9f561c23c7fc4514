package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Authentication/Authorization errors
const (
	// ErrCodeInvalidCredentials indicates a bad username/password pair.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeUnauthorized indicates the request carries no usable credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates a valid token with insufficient role.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeTokenMalformed indicates a structurally invalid token.
	ErrCodeTokenMalformed ErrorCode = "TOKEN_MALFORMED"
	// ErrCodeTokenExpired indicates the token is past its expiry.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeTokenSignatureInvalid indicates the signature does not verify.
	ErrCodeTokenSignatureInvalid ErrorCode = "TOKEN_SIGNATURE_INVALID"
	// ErrCodeWrongTokenType indicates an access token was presented where a
	// refresh token is required, or vice versa.
	ErrCodeWrongTokenType ErrorCode = "WRONG_TOKEN_TYPE"
	// ErrCodeRefreshTokenInvalid covers not-found, revoked, and expired
	// refresh tokens. One code for all three so a caller cannot probe
	// whether a stolen token is still live.
	ErrCodeRefreshTokenInvalid ErrorCode = "REFRESH_TOKEN_INVALID"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Availability/internal errors
const (
	// ErrCodeDependencyUnavailable indicates a peer service is unreachable
	// or its circuit breaker is open.
	ErrCodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDependencyUnavailable: true,
	ErrCodeDatabaseError:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
