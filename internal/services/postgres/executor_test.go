package postgres

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExecutor_CapturesStreamsAndExitCode(t *testing.T) {
	executor := &DefaultExecutor{}

	result, err := executor.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo 'error message' >&2; exit 3"},
	})

	require.NoError(t, err)
	assert.Equal(t, "out\n", string(result.Stdout))
	assert.Equal(t, "error message\n", string(result.Stderr))
	assert.Equal(t, 3, result.ExitCode)
}

func TestDefaultExecutor_PassesEnv(t *testing.T) {
	executor := &DefaultExecutor{}

	result, err := executor.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $PGDATABASE"},
		Env:  []string{"PGDATABASE=envdb"},
	})

	require.NoError(t, err)
	assert.Equal(t, "envdb\n", string(result.Stdout))
	assert.Equal(t, 0, result.ExitCode)
}

func TestDefaultExecutor_AttachesStreams(t *testing.T) {
	executor := &DefaultExecutor{}
	var stdout bytes.Buffer

	result, err := executor.Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "cat"},
		Stdin:  strings.NewReader("piped input"),
		Stdout: &stdout,
	})

	require.NoError(t, err)
	assert.Equal(t, "piped input", stdout.String())
	assert.Empty(t, result.Stdout)
}

func TestDefaultExecutor_MissingBinary(t *testing.T) {
	executor := &DefaultExecutor{}

	result, err := executor.Run(context.Background(), Command{Name: "pgops-no-such-binary"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to start pgops-no-such-binary")
}
