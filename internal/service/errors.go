package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/help-workstation-api/internal/lifecycle"
	"github.com/help-workstation-api/internal/repository"
	"github.com/help-workstation-api/internal/validation"
)

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrPrecondition is returned when an operation's precondition does not hold
	ErrPrecondition = errors.New("precondition failed")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	// ErrSlugTaken is returned when another record already uses the slug
	ErrSlugTaken = errors.New("slug already in use")
	// ErrConfirmationRequired is returned when a delete token is missing, wrong or expired
	ErrConfirmationRequired = errors.New("delete confirmation required")
)

// ValidationError lists every invalid input field. It is returned before
// any store call is made.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(fields []validation.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// StoreWriteError wraps an insert, update or delete the store rejected
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// PointerInconsistencyError is returned when a version was written but the
// article could not be pointed at it. The surrounding transaction is rolled
// back, so the version does not persist.
type PointerInconsistencyError struct {
	ArticleID string
	VersionID string
	Err       error
}

func (e *PointerInconsistencyError) Error() string {
	return fmt.Sprintf("article %s: version %s written but current pointer not updated: %v",
		e.ArticleID, e.VersionID, e.Err)
}

func (e *PointerInconsistencyError) Unwrap() error { return e.Err }

// storeWrite maps a repository write failure onto the service taxonomy
func storeWrite(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrSlugTaken)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrReference):
		return fmt.Errorf("%s: %v: %w", op, err, ErrNotFound)
	default:
		return &StoreWriteError{Op: op, Err: err}
	}
}
