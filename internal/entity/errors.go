package entity

import (
	"errors"
	"fmt"
)

// Domain errors for quiz sessions and remote record writes.
var (
	ErrEmptyDeck        = errors.New("deck has no flashcards")
	ErrDeckNotFound     = errors.New("deck not found")
	ErrSessionState     = errors.New("operation not allowed in current session state")
	ErrSessionAbandoned = errors.New("session abandoned")
)

// TransientWriteError marks a remote write failure that is worth one
// retry: network errors, timeouts and 5xx-class responses.
type TransientWriteError struct {
	Op  string
	Err error
}

func (e *TransientWriteError) Error() string {
	return fmt.Sprintf("%s: transient write failure: %v", e.Op, e.Err)
}

func (e *TransientWriteError) Unwrap() error { return e.Err }

// PermanentWriteError marks a remote write the store rejected outright
// (4xx-class other than not-found). It is never retried.
type PermanentWriteError struct {
	Op     string
	Status int
	Err    error
}

func (e *PermanentWriteError) Error() string {
	return fmt.Sprintf("%s: rejected with status %d: %v", e.Op, e.Status, e.Err)
}

func (e *PermanentWriteError) Unwrap() error { return e.Err }

// IsTransientWrite reports whether err is retryable per the write
// error taxonomy.
func IsTransientWrite(err error) bool {
	var te *TransientWriteError
	return errors.As(err, &te)
}
