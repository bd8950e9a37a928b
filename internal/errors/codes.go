// Package errors defines the error taxonomy of the shell.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies a class of shell failure.
type Code int

const (
	CodeUnknown        Code = 1000
	CodeConfigInvalid  Code = 1001
	CodeAlreadyRunning Code = 1002

	// Bootstrap
	CodePortExhausted Code = 2001

	// Service
	CodeServiceLaunch Code = 3001

	// Liveness
	CodeProbeTransient Code = 4001

	// Window
	CodeNavigation Code = 5001
)

var codeNames = map[Code]string{
	CodeUnknown:        "unknown",
	CodeConfigInvalid:  "config_invalid",
	CodeAlreadyRunning: "already_running",
	CodePortExhausted:  "port_exhausted",
	CodeServiceLaunch:  "service_launch",
	CodeProbeTransient: "probe_transient",
	CodeNavigation:     "navigation",
}

// String returns the short name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// ShellError carries a code, the operation that failed and the underlying cause.
type ShellError struct {
	Code Code
	// Op describes the action being performed, e.g. "portalloc.Allocate".
	Op  string
	Msg string
	Err error
}

// Error returns a formatted string representation of the error.
func (e *ShellError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Op, e.Msg)
}

// Unwrap returns the underlying error.
func (e *ShellError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a ShellError with the same code.
// This lets callers match the sentinels below with errors.Is.
func (e *ShellError) Is(target error) bool {
	t, ok := target.(*ShellError)
	return ok && t.Code == e.Code
}

// New creates a ShellError with the given code, operation, message and cause.
func New(code Code, op, msg string, err error) error {
	return &ShellError{
		Code: code,
		Op:   op,
		Msg:  msg,
		Err:  err,
	}
}

// Sentinels for errors.Is matching.
var (
	ErrConfigInvalid  = &ShellError{Code: CodeConfigInvalid, Msg: "invalid configuration"}
	ErrAlreadyRunning = &ShellError{Code: CodeAlreadyRunning, Msg: "shell already running"}
	ErrPortExhausted  = &ShellError{Code: CodePortExhausted, Msg: "no free port"}
	ErrServiceLaunch  = &ShellError{Code: CodeServiceLaunch, Msg: "service failed"}
	ErrProbeTransient = &ShellError{Code: CodeProbeTransient, Msg: "service not reachable yet"}
	ErrNavigation     = &ShellError{Code: CodeNavigation, Msg: "navigation failed"}
)

// CodeOf returns the code of the first ShellError in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var se *ShellError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}
