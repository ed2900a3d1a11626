package transform

import (
	"errors"
	"fmt"
)

// ErrNumericDegenerate is the sentinel wrapped by every DegenerateError.
var ErrNumericDegenerate = errors.New("numerically degenerate transform")

// DegenerateError reports transform parameters that would divide by zero
// or otherwise produce a non-finite matrix.
type DegenerateError struct {
	Op     string  // Operation being built, e.g. "perspective"
	Param  string  // Offending parameter
	Value  float64 // Offending value
	Reason string
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("%s: %s=%g: %s", e.Op, e.Param, e.Value, e.Reason)
}

func (e *DegenerateError) Unwrap() error {
	return ErrNumericDegenerate
}
