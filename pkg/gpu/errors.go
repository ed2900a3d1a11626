package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContextUnavailable is returned when there is no usable surface to
	// render into.
	ErrContextUnavailable = errors.New("graphics context unavailable")
	// ErrNoProgram is returned by calls that need a bound program.
	ErrNoProgram = errors.New("no program in use")
	// ErrUnknownUniform is returned when setting a uniform the bound
	// program does not declare, or with the wrong type.
	ErrUnknownUniform = errors.New("unknown uniform")
)

// CompileError reports a shader source that could not be compiled.
type CompileError struct {
	Stage  Stage
	Source string
	Log    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s shader %q: %s", e.Stage, e.Source, e.Log)
}

// LinkError reports a vertex/fragment pair that could not be linked.
type LinkError struct {
	Vertex   string
	Fragment string
	Log      []string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %q + %q: %s", e.Vertex, e.Fragment, strings.Join(e.Log, "; "))
}
