package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLaunchConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launch.yaml")
	content := `
run:
  id: attempt1
model:
  size: 32b
  path: /checkpoints/qwen-32b
cluster:
  name: oci-iad
  server_container: igitman/nemo-skills-vllm:0.6.1
agent:
  commit: 1a2b3c4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderPrintsCommandWithoutExecuting(t *testing.T) {
	// An empty PATH guarantees nothing could have executed even by accident.
	t.Setenv("PATH", t.TempDir())

	out, err := runCommand(t, "render", "--config", writeLaunchConfig(t))
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	if !strings.Contains(out, "ns eval --cluster oci-iad") {
		t.Fatalf("expected rendered command, got:\n%s", out)
	}
	if !strings.Contains(out, "--expname swe-bench-32b-attempt1") {
		t.Fatalf("expected expanded expname, got:\n%s", out)
	}
	if !strings.Contains(out, "# env: NEMO_SKILLS_DISABLE_UNCOMMITTED_CHANGES_CHECK=1") {
		t.Fatalf("expected env delta comment, got:\n%s", out)
	}
}

func TestRenderAppliesFlagOverrides(t *testing.T) {
	out, err := runCommand(t, "render", "--config", writeLaunchConfig(t),
		"--run-id", "attempt9", "--num-chunks", "16", "--temperature", "0")
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	if !strings.Contains(out, "attempt9") {
		t.Fatalf("expected run id override, got:\n%s", out)
	}
	if !strings.Contains(out, "--num_chunks 16") {
		t.Fatalf("expected chunk override, got:\n%s", out)
	}
	if !strings.Contains(out, "++inference.temperature=0") {
		t.Fatalf("expected greedy temperature, got:\n%s", out)
	}
}

func TestRenderRequiresIdentity(t *testing.T) {
	if _, err := runCommand(t, "render"); err == nil {
		t.Fatal("render expected to fail without model path and cluster")
	}
}

func TestEvalPropagatesMissingBinaryExitCode(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := runCommand(t, "eval", "--config", writeLaunchConfig(t))
	if err == nil {
		t.Fatal("eval expected to fail when ns is not installed")
	}

	exitErr, ok := err.(*ExitCodeError)
	if !ok {
		t.Fatalf("expected ExitCodeError, got %T: %v", err, err)
	}
	if exitErr.Code != 127 {
		t.Fatalf("expected exit code 127 for missing binary, got %d", exitErr.Code)
	}
}
