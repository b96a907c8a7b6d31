package domain

import (
	"errors"
	"fmt"
)

// ErrModelNotAvailable is returned when the requested model is not among
// the models the generation backend reports.
var ErrModelNotAvailable = errors.New("model not available")

// BackendError wraps a failure from the generation or retrieval backend.
// The dialog session surfaces it as a visible error answer and keeps the
// loop running; it is never fatal during steady-state query handling.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
