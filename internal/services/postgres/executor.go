package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Command describes one invocation of a PostgreSQL client tool.
type Command struct {
	Name string
	Args []string
	Env  []string

	// Stdin, Stdout and Stderr are attached to the process when set.
	// A nil Stdout or Stderr is captured into the CommandResult instead.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the command name followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// CommandResult holds the captured streams and exit status of a finished command.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandExecutor allows mocking exec.Command in tests.
//
// Run returns an error only when the process could not be run at all.
// A process that ran and exited non-zero is reported through CommandResult.ExitCode.
type CommandExecutor interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Run starts the command, waits for it and collects its output.
func (e *DefaultExecutor) Run(ctx context.Context, c Command) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // binary paths come from configuration
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}

	waitErr := cmd.Wait()
	result := &CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("%s failed: %w", c.Name, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}
