package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAdmitted marks items skipped because the run was cancelled
	// before they were admitted.
	ErrNotAdmitted = errors.New("batch: item not admitted")

	// ErrTaskFailed is matched by every *TaskError.
	ErrTaskFailed = errors.New("batch: task failed")

	// ErrTaskPanic is matched by every *PanicError.
	ErrTaskPanic = errors.New("batch: task panicked")
)

// TaskError wraps a pipeline failure for one URL.
type TaskError struct {
	URL string
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("audit %s: %v", e.URL, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func (e *TaskError) Is(target error) bool {
	return target == ErrTaskFailed
}

// PanicError carries a panic recovered from a pipeline call.
type PanicError struct {
	URL   string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("audit %s: panic: %v", e.URL, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrTaskPanic
}
