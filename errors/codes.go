package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDuplicate indicates a uniqueness violation within a tenant namespace.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidToken indicates the bearer token failed verification.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Infrastructure errors
const (
	// ErrCodeConnectivity indicates a tenant namespace or the base store is unreachable.
	ErrCodeConnectivity ErrorCode = "CONNECTIVITY"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
