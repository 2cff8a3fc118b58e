package postgres

import (
	"context"

	"github.com/fgeck/pgops/internal/models"
)

// Shell runs an interactive psql session on the caller's terminal and blocks until it exits.
// The exit status of psql itself is not treated as an error.
func (s *Impl) Shell(ctx context.Context, cfg models.Config) error {
	cmd := Command{
		Name:   binary(cfg.Binaries.Psql, DefaultPsql),
		Env:    mergeEnv(s.environ(), buildEnv(cfg.Postgres)),
		Stdin:  s.stdin,
		Stdout: s.stdout,
		Stderr: s.stderr,
	}
	argv := cmd.Argv()

	s.logger.Debug().Strs("cmd", argv).Msg("starting interactive session")

	result, err := s.executor.Run(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &CommandError{Kind: ErrProcessLaunch, Op: "psql", Command: argv, Err: err}
	}

	if result.ExitCode != 0 {
		s.logger.Debug().Int("exit_code", result.ExitCode).Msg("psql exited with non-zero status")
	}

	return nil
}
