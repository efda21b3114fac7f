package protocol

// Error codes carried in ErrorShape.Code.
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrValidation        = "VALIDATION_FAILED"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrNotFound          = "NOT_FOUND"
	ErrMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrResourceExhausted = "RESOURCE_EXHAUSTED"
	ErrUnavailable       = "UNAVAILABLE"
	ErrInternal          = "INTERNAL"
)
