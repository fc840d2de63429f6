package interp

import (
	"errors"
	"fmt"
)

// Every interpreter failure matches ErrRuntime plus exactly one category.
var (
	ErrRuntime        = errors.New("runtime error")
	ErrName           = errors.New("name error")
	ErrType           = errors.New("type error")
	ErrDivisionByZero = errors.New("division by zero")
	ErrStepLimit      = errors.New("step limit exceeded")
)

// failure is a categorised message not yet tied to a line.
type failure struct {
	kind error
	msg  string
}

func (f *failure) Error() string { return f.msg }

func (f *failure) Is(target error) bool { return target == f.kind || target == ErrRuntime }

func failf(kind error, format string, args ...any) error {
	return &failure{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Errorf returns an error matching ErrRuntime and kind.
func Errorf(kind error, format string, args ...any) error {
	return failf(kind, format, args...)
}

// AtLine wraps err with line unless it already carries one.
func AtLine(line int, err error) error { return atLine(line, err) }

// RuntimeError attaches the source line of the innermost node being
// evaluated when a failure happened.
type RuntimeError struct {
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Error Semántico en línea %d: %v", e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func (e *RuntimeError) Is(target error) bool { return target == ErrRuntime }

// SourceLine lets compiler.ErrorLine find the line without string matching.
func (e *RuntimeError) SourceLine() int { return e.Line }

// atLine wraps err with line unless it already carries one.
func atLine(line int, err error) error {
	var re *RuntimeError
	if errors.As(err, &re) {
		return err
	}
	return &RuntimeError{Line: line, Err: err}
}
