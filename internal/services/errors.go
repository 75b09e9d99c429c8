package services

import (
	"errors"
	"fmt"
)

// ErrBackupNotRestorable is returned when restoring a backup that did not
// complete.
var ErrBackupNotRestorable = errors.New("backup is not restorable")

// InvalidInputError rejects a whole call; no partial result is produced.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
