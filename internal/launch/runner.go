package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"nslaunch/internal/logging"
)

// Runner executes an assembled invocation.
type Runner interface {
	Run(ctx context.Context, inv *Invocation) error
}

// ExecRunner implements Runner by shelling out to the harness binary. The
// zero value resolves the binary from the invocation and inherits the
// process's stdio.
type ExecRunner struct {
	// Bin overrides the program named by the invocation. Tests point this
	// at a stub; production leaves it empty.
	Bin    string
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger logging.Logger
}

// NewExecRunner creates a runner that resolves the harness binary from PATH
// and streams its output to the parent's stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Logger: logging.NewComponentLogger("launch"),
	}
}

// Run executes the invocation synchronously and returns the child's error,
// if any. The extra environment entries are set on the child only; the
// parent environment is never touched.
func (r *ExecRunner) Run(ctx context.Context, inv *Invocation) error {
	if inv == nil {
		return fmt.Errorf("invocation cannot be nil")
	}

	bin := r.Bin
	if bin == "" {
		bin = inv.Program
		if p, err := exec.LookPath(inv.Program); err == nil {
			bin = p
		}
	}

	cmd := exec.CommandContext(ctx, bin, inv.Args...)
	cmd.Env = append(os.Environ(), inv.ExtraEnv...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Stdin = r.Stdin
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	logger := logging.OrNop(r.Logger)
	logger.Info("launching %s", inv.String())

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s eval: %w", inv.Program, err)
	}
	return nil
}

// ExitCode maps a Run error to the process exit code to propagate: 0 for
// success, the child's own code when it exited, 127 when the binary was not
// found, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return 127
	}
	return 1
}
