package streamstore

import (
	"errors"

	vserrors "github.com/vango-dev/streamstore/internal/errors"
)

// ErrMissingContainer matches any *MissingContainerError with errors.Is.
var ErrMissingContainer = vserrors.New("E001")

// MissingContainerError is raised when the accessor of a Binding is used
// in a scope that has no enclosing container of that Binding.
type MissingContainerError struct {
	// Binding is the name of the binding that was looked up.
	Binding string
}

func newMissingContainer(name string) *MissingContainerError {
	return &MissingContainerError{Binding: name}
}

// Error implements the error interface.
func (e *MissingContainerError) Error() string {
	return "streamstore: store container not found for " + e.Binding
}

// Unwrap returns the coded error so callers can format it or match E001.
func (e *MissingContainerError) Unwrap() error {
	return vserrors.New("E001").
		WithDetailf("binding %q", e.Binding).
		WithSuggestion("Render the consumer inside " + e.Binding + ".Provider(...)")
}

// IsMissingContainer reports whether err is or wraps a missing container
// error.
func IsMissingContainer(err error) bool {
	var mc *MissingContainerError
	return errors.As(err, &mc)
}
