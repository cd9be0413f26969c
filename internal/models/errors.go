package models

import (
	"errors"
	"fmt"
)

// InvalidEntityError reports an entity that violates the span or confidence
// contract. Index is -1 when the entity was not part of a list.
type InvalidEntityError struct {
	Index  int
	Text   string
	Reason string
}

func (e *InvalidEntityError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid entity at index %d (%q): %s", e.Index, e.Text, e.Reason)
	}
	return fmt.Sprintf("invalid entity %q: %s", e.Text, e.Reason)
}

// IsInvalidEntityError checks if err wraps an InvalidEntityError.
func IsInvalidEntityError(err error) bool {
	var target *InvalidEntityError
	return errors.As(err, &target)
}
