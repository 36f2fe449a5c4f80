package engine

import (
	"errors"
	"fmt"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// ErrCircularReference marks resolution failures caused by a dependency
// cycle. Use errors.Is to test for it.
var ErrCircularReference = errors.New("circular reference")

// ResolutionError is the error type for everything that goes wrong while
// building or resolving a configuration: structural mismatches, missing
// or unexpected keys, malformed or unknown function calls, cycles, and
// wrapped conversion or interpolation failures. It always carries the
// keypath of the offending position.
type ResolutionError struct {
	Path   conf.KeyPath
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("cannot resolve keypath %q: %s", e.Path.String(), reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// resolutionErrorf builds a ResolutionError at a keypath.
func resolutionErrorf(path conf.KeyPath, format string, args ...any) error {
	return &ResolutionError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// attachPath tags an error with a keypath unless one is attached already.
// The first position a failure passes through owns the path.
func attachPath(path conf.KeyPath, err error) error {
	if err == nil {
		return nil
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return err
	}
	return &ResolutionError{Path: path, Err: err}
}

func circularError(path conf.KeyPath) error {
	return &ResolutionError{Path: path, Err: ErrCircularReference}
}
