package story

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// ErrStale is returned when an update's precondition no longer holds.
var ErrStale = errors.New("scene changed since it was read")

// Entity kinds used in NotFoundError.
const (
	KindStory  = "story"
	KindScene  = "scene"
	KindChoice = "choice"
)

// NotFoundError reports a story, scene or choice ID that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
