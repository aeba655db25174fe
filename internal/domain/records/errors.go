package records

import (
	"errors"
	"fmt"
)

// ErrInvalidInput classifies request data the API refuses to store. Any
// error for which errors.Is(err, ErrInvalidInput) holds maps to HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// InputError carries the client-facing message for a rejected field.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}

func missingField(name string) error {
	return &InputError{Message: fmt.Sprintf("Missing required field: %s", name)}
}
