package backend

import "fmt"

// ExecutionError reports a dispatch that aborted. The whole invocation is
// lost; no partial accumulation is guaranteed.
type ExecutionError struct {
	Backend string
	Value   any
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s execution failed: %v", e.Backend, e.Value)
}

// Unwrap exposes the recovered value when it is an error.
func (e *ExecutionError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func executionError(backend string, rec any) error {
	return &ExecutionError{Backend: backend, Value: rec}
}
