package vault

import (
	"errors"
	"fmt"
	"strings"
)

// Error types
var (
	// ErrComponentNotFound indicates a component was not found
	ErrComponentNotFound = errors.New("component not found")

	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrContentNotFound indicates a content row was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrObjectNotFound indicates a stored object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrDraftNotFound indicates a draft was not found
	ErrDraftNotFound = errors.New("draft not found")

	// ErrStorageNotConfigured indicates no media storage backend is configured
	ErrStorageNotConfigured = errors.New("media storage is not configured")

	// ErrDuplicate indicates a unique constraint would be violated
	ErrDuplicate = errors.New("duplicate entry")
)

// ValidationError reports caller input that failed required-field or shape
// checks. Fields names every offending field.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "missing required fields"
	}
	if len(e.Fields) == 0 {
		return "validation failed: " + msg
	}
	return fmt.Sprintf("validation failed: %s: %s", msg, strings.Join(e.Fields, ", "))
}

// NotFoundError reports that no record exists for Key.
type NotFoundError struct {
	Kind string
	Key  string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failure of the dynamic store.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persistence operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence operation %s failed for component %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MediaError wraps a failed upload or delete against media storage.
type MediaError struct {
	Op  string
	Key string
	Err error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media operation %s failed for %s: %v", e.Op, e.Key, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage backend operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err signals a missing record of any kind.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) ||
		errors.Is(err, ErrComponentNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrDraftNotFound) ||
		errors.Is(err, ErrObjectNotFound)
}
