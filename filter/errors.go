package filter

import (
	"errors"
	"fmt"
)

// MappingFilterError is the single error kind the filter engine raises,
// per spec §6-7: a human-readable message plus an optional underlying
// cause, surfaced to the caller verbatim.
type MappingFilterError struct {
	Op  string
	Err error
}

func (e *MappingFilterError) Error() string {
	return fmt.Sprintf("filter: %s: %v", e.Op, e.Err)
}

func (e *MappingFilterError) Unwrap() error {
	return e.Err
}

// wrapErr wraps err as a *MappingFilterError tagged with op, unless it
// already is one (in which case it is returned unchanged).
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var mfe *MappingFilterError
	if errors.As(err, &mfe) {
		return err
	}
	return &MappingFilterError{Op: op, Err: err}
}
