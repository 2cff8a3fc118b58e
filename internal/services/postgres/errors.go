package postgres

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrConnection    = errors.New("opening database connection failed")
	ErrProcessLaunch = errors.New("process launch failed")
	ErrDump          = errors.New("database dump failed")
	ErrRestore       = errors.New("database restore failed")
	ErrWipe          = errors.New("emptying database failed")
	ErrStatsQuery    = errors.New("statistics query failed")
)

// CommandError describes a failed client tool invocation.
type CommandError struct {
	Kind     error
	Op       string
	Command  []string
	ExitCode int
	Stderr   string // verbatim, surrounding whitespace trimmed
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.Stderr != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Stderr)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s, cmd: %s: %v", e.Kind, e.Op, strings.Join(e.Command, " "), e.Err)
	default:
		return fmt.Sprintf("%s: %s exited with status %d", e.Kind, e.Op, e.ExitCode)
	}
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
