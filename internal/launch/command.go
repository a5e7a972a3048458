package launch

import (
	"fmt"
	"strconv"
	"strings"

	"nslaunch/internal/config"
)

// DisableUncommittedCheckEnv must be set in the child environment so the
// evaluation harness does not refuse to run from a dirty checkout.
const DisableUncommittedCheckEnv = "NEMO_SKILLS_DISABLE_UNCOMMITTED_CHANGES_CHECK"

// Invocation is the fully assembled external command. It is built once from
// a validated config and never modified afterwards.
type Invocation struct {
	Program  string
	Args     []string
	ExtraEnv []string
}

// Build assembles the `ns eval` invocation from a validated launch config.
//
// Flag order is fixed: the documented `--` flags first, in the order the
// harness documents them, then the `++` framework parameters. Optional
// string flags (server_args, server_container, agent commit) are omitted
// when empty rather than passed as empty strings.
func Build(cfg *config.LaunchConfig) (*Invocation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("launch config cannot be nil")
	}

	expname := expandTemplates(cfg.Run.Expname, cfg)
	outputDir := expandTemplates(cfg.Run.OutputDir, cfg)

	args := []string{
		"eval",
		"--cluster", cfg.Cluster.Name,
		"--server_type", cfg.Cluster.ServerType,
		"--model", cfg.Model.Path,
	}
	if cfg.Cluster.ServerArgs != "" {
		args = append(args, "--server_args", cfg.Cluster.ServerArgs)
	}
	args = append(args,
		"--server_nodes", strconv.Itoa(cfg.Cluster.ServerNodes),
		"--server_gpus", strconv.Itoa(cfg.Cluster.ServerGPUs),
		"--benchmarks", cfg.Benchmark.Name,
		"--expname", expname,
		"--output_dir", outputDir,
		"--split", cfg.Benchmark.Split,
		"--dependent_jobs", strconv.Itoa(cfg.Benchmark.DependentJobs),
		"--num_chunks", strconv.Itoa(cfg.Benchmark.NumChunks),
	)
	if cfg.Cluster.ServerContainer != "" {
		args = append(args, "--server_container", cfg.Cluster.ServerContainer)
	}

	args = append(args,
		"++agent_framework="+cfg.Agent.Framework,
		"++agent_framework_repo="+cfg.Agent.Repo,
	)
	if cfg.Agent.Commit != "" {
		args = append(args, "++agent_framework_commit="+cfg.Agent.Commit)
	}
	args = append(args,
		"++inference.temperature="+formatFloat(cfg.Inference.Temperature),
		"++inference.top_p="+formatFloat(cfg.Inference.TopP),
		"++inference.top_k="+strconv.Itoa(cfg.Inference.TopK),
	)

	return &Invocation{
		Program:  "ns",
		Args:     args,
		ExtraEnv: []string{DisableUncommittedCheckEnv + "=1"},
	}, nil
}

// String renders the invocation as a copy-pasteable shell command.
func (inv *Invocation) String() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Program)
	for _, arg := range inv.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// expandTemplates substitutes {run_id}, {model_size} and {benchmark}
// placeholders in templated fields.
func expandTemplates(s string, cfg *config.LaunchConfig) string {
	return strings.NewReplacer(
		"{run_id}", cfg.Run.ID,
		"{model_size}", cfg.Model.Size,
		"{benchmark}", cfg.Benchmark.Name,
	).Replace(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]{}~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
