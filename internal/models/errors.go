// Package models defines the error and diagnostic types shared by the
// packages of an aggregation run.
package models

import (
	"errors"
	"fmt"
)

// StructuralError reports a result tree that does not have the expected
// layout: a missing directory or file, a malformed configuration key, or a
// malformed metrics line. It aborts one unit of work (a seed or a
// configuration) without touching what other units accumulated.
type StructuralError struct {
	// Op names what was being done, e.g. "read result dir".
	Op string
	// Path is the offending file or directory.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err is, or wraps, a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
