package stoppable

import (
	"errors"
	"fmt"
)

// TaskMetaError exposes which spawned task produced a failure.
// Failures carry it when the pool is built WithErrorTagging.
type TaskMetaError interface {
	error
	Unwrap() error
	TaskID() (any, bool)
	TaskIndex() (int, bool)
}

// taggedError decorates a task failure with its spawn index and optional ID.
type taggedError struct {
	err   error
	id    any
	index int
}

func tagError(err error, id any, index int) error {
	if err == nil {
		return nil
	}
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return err
	}
	return &taggedError{err: err, id: id, index: index}
}

func (e *taggedError) Error() string { return e.err.Error() }
func (e *taggedError) Unwrap() error { return e.err }

func (e *taggedError) TaskID() (any, bool) { return e.id, e.id != nil }

func (e *taggedError) TaskIndex() (int, bool) { return e.index, true }

// Format prints the tag with %+v.
func (e *taggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.id != nil {
				_, _ = fmt.Fprintf(s, "task(index=%d,id=%v): %+v", e.index, e.id, e.err)
			} else {
				_, _ = fmt.Fprintf(s, "task(index=%d): %+v", e.index, e.err)
			}
			return
		}
		_, _ = fmt.Fprint(s, e.Error())
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskID returns the ID given to SpawnWithID for the task that produced err.
func ExtractTaskID(err error) (any, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.TaskID()
	}
	return nil, false
}

// ExtractTaskIndex returns the zero-based spawn order of the task that produced err.
func ExtractTaskIndex(err error) (int, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.TaskIndex()
	}
	return 0, false
}
