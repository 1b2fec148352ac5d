package runtime

import (
	"fmt"

	"github.com/vango-dev/streamstore/internal/errors"
)

// RenderError records a component that panicked during render.
type RenderError struct {
	// Scope is the ID of the failed instance's scope.
	Scope uint64

	// Err is the panic value, converted to an error if needed.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render: component %d: %v", e.Scope, e.Err)
}

// Unwrap returns the panic value for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// asError converts a recovered panic value into an error.
func asError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return errors.New("E005").WithDetailf("panic: %v", p)
}
