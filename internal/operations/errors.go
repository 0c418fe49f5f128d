package operations

const (
	ErrValidation        = "validation_error"
	ErrDuplicateValue    = "duplicate_value"
	ErrInvalidTransition = "invalid_status_transition"
	ErrForbidden         = "forbidden"
	ErrNotFound          = "not_found"
	ErrServerError       = "server_error"
)

// Error carries a machine-readable code, an optional field name for
// validation failures, and a human-readable message.
type Error struct {
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func validationErr(field, message string) *Error {
	return &Error{Code: ErrValidation, Field: field, Message: message}
}

func notFoundErr(message string) *Error {
	return &Error{Code: ErrNotFound, Message: message}
}

func serverErr() *Error {
	return &Error{Code: ErrServerError}
}
