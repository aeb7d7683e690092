package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrForbidden is returned when the actor may not perform the operation.
	// It never says whether the target exists.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

// Kind classifies a ValidationError.
type Kind string

const (
	KindProjectClosed          Kind = "PROJECT_CLOSED"
	KindParentBlocked          Kind = "PARENT_BLOCKED"
	KindParentCancelled        Kind = "PARENT_CANCELLED"
	KindNotAProjectMember      Kind = "NOT_A_PROJECT_MEMBER"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindInvalidProgress        Kind = "INVALID_PROGRESS"
	KindUnfinishedDependencies Kind = "UNFINISHED_DEPENDENCIES"
	KindInvalidParent          Kind = "INVALID_PARENT"
	KindDependencyCycle        Kind = "DEPENDENCY_CYCLE"
	KindInvalidInput           Kind = "INVALID_INPUT"
)

// ValidationError is a caller-facing rejection of an operation. TaskIDs lists
// the tasks that caused it, when there are any.
type ValidationError struct {
	Kind    Kind
	Message string
	TaskIDs []uint
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	return e.Message
}

// Is matches any ValidationError of the same Kind, so the Err* values below
// work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

func newValidation(kind Kind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput wraps a boundary parsing failure as a validation error.
func InvalidInput(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Kind: KindInvalidInput, Message: err.Error()}
}

var (
	ErrProjectClosed          = &ValidationError{Kind: KindProjectClosed}
	ErrParentBlocked          = &ValidationError{Kind: KindParentBlocked}
	ErrParentCancelled        = &ValidationError{Kind: KindParentCancelled}
	ErrNotAProjectMember      = &ValidationError{Kind: KindNotAProjectMember}
	ErrInvalidTransition      = &ValidationError{Kind: KindInvalidTransition}
	ErrInvalidProgress        = &ValidationError{Kind: KindInvalidProgress}
	ErrUnfinishedDependencies = &ValidationError{Kind: KindUnfinishedDependencies}
	ErrInvalidParent          = &ValidationError{Kind: KindInvalidParent}
	ErrDependencyCycle        = &ValidationError{Kind: KindDependencyCycle}
	ErrInvalidInput           = &ValidationError{Kind: KindInvalidInput}
)

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// CascadeError reports the task writes that failed during a best-effort
// cascade. Writes for the other tasks were applied.
type CascadeError struct {
	ProjectID uint
	Failed    map[uint]error
}

func (e *CascadeError) Error() string {
	ids := e.TaskIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("task %d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("cascade for project %d failed for %d task(s): %s",
		e.ProjectID, len(ids), strings.Join(parts, "; "))
}

func (e *CascadeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.TaskIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// TaskIDs returns the failed task ids in ascending order.
func (e *CascadeError) TaskIDs() []uint {
	ids := make([]uint, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
