package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrScheduleNotFound = errors.New("schedule not found: timetable table is missing")
)

// RemoteFetchError означает, что CIST ответил статусом, отличным от 200
type RemoteFetchError struct {
	StatusCode int
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// TransportError означает, что до CIST не удалось достучаться
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("timetable transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
