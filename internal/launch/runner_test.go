package launch

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nslaunch/internal/logging"
)

func shInvocation(script string) *Invocation {
	return &Invocation{
		Program:  "sh",
		Args:     []string{"-c", script},
		ExtraEnv: []string{DisableUncommittedCheckEnv + "=1"},
	}
}

func testRunner(stdout, stderr *bytes.Buffer) *ExecRunner {
	return &ExecRunner{
		Bin:    "/bin/sh",
		Stdout: stdout,
		Stderr: stderr,
		Logger: logging.Nop(),
	}
}

func TestRunPropagatesSuccess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := testRunner(&stdout, &stderr)

	err := r.Run(context.Background(), shInvocation("exit 0"))
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
}

func TestRunPropagatesFailureExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := testRunner(&stdout, &stderr)

	err := r.Run(context.Background(), shInvocation("exit 7"))
	require.Error(t, err)
	assert.Equal(t, 7, ExitCode(err))
}

func TestRunSetsChildEnvOnly(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := testRunner(&stdout, &stderr)

	inv := shInvocation(`printf '%s' "$` + DisableUncommittedCheckEnv + `"`)
	err := r.Run(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, "1", stdout.String(), "child must see the disable flag")

	_, present := os.LookupEnv(DisableUncommittedCheckEnv)
	assert.False(t, present, "parent environment must stay untouched")
}

func TestRunMissingBinary(t *testing.T) {
	r := &ExecRunner{
		Bin:    "/nonexistent/ns-binary",
		Logger: logging.Nop(),
	}

	err := r.Run(context.Background(), shInvocation("exit 0"))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRunNilInvocation(t *testing.T) {
	r := testRunner(&bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, r.Run(context.Background(), nil))
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(context.Canceled))
}
