package dealstore

import "fmt"

const (
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

type Error struct {
	Code      string
	Message   string
	Transient bool
	Status    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return 400
	case CodeNotFound:
		return 404
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}

func newError(code, message string, transient bool) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Transient: transient,
		Status:    statusForCode(code),
	}
}

// NewPersistError wraps a backend write failure as a transient error: the
// in-memory state stayed authoritative, the caller may retry.
func NewPersistError(err error) error {
	return newError(CodeUnavailable, "persist snapshot: "+err.Error(), true)
}
