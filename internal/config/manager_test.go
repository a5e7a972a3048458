package config

import (
	"os"
	"path/filepath"
	"testing"
)

func noEnv(string) (string, bool) { return "", false }

func envFrom(vars map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launch.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
run:
  id: attempt1
model:
  path: /checkpoints/qwen-32b
cluster:
  name: oci-iad
`

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	cfg, err := cm.LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Cluster.ServerType != "vllm" {
		t.Fatalf("expected default server type vllm, got %s", cfg.Cluster.ServerType)
	}
	if cfg.Cluster.ServerGPUs != 8 {
		t.Fatalf("expected default server gpus 8, got %d", cfg.Cluster.ServerGPUs)
	}
	if cfg.Benchmark.Name != "swe-bench" {
		t.Fatalf("expected default benchmark swe-bench, got %s", cfg.Benchmark.Name)
	}
	if cfg.Benchmark.Split != "test" {
		t.Fatalf("expected default split test, got %s", cfg.Benchmark.Split)
	}
	if cfg.Inference.Temperature != 0.6 {
		t.Fatalf("expected default temperature 0.6, got %v", cfg.Inference.Temperature)
	}
	if cfg.Inference.TopK != 20 {
		t.Fatalf("expected default top_k 20, got %d", cfg.Inference.TopK)
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	cfg, err := cm.LoadConfig(writeConfig(t, `
run:
  id: attempt2
  output_dir: /results/custom
model:
  size: 70b
  path: /checkpoints/qwen-70b
cluster:
  name: oci-iad
  server_nodes: 4
  server_args: "--tensor-parallel-size 8"
benchmark:
  num_chunks: 16
inference:
  temperature: 0.2
`))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Model.Size != "70b" {
		t.Fatalf("expected model size 70b, got %s", cfg.Model.Size)
	}
	if cfg.Cluster.ServerNodes != 4 {
		t.Fatalf("expected 4 server nodes, got %d", cfg.Cluster.ServerNodes)
	}
	if cfg.Cluster.ServerArgs != "--tensor-parallel-size 8" {
		t.Fatalf("unexpected server args: %s", cfg.Cluster.ServerArgs)
	}
	if cfg.Benchmark.NumChunks != 16 {
		t.Fatalf("expected 16 chunks, got %d", cfg.Benchmark.NumChunks)
	}
	if cfg.Inference.Temperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", cfg.Inference.Temperature)
	}
	if cfg.Run.OutputDir != "/results/custom" {
		t.Fatalf("unexpected output dir: %s", cfg.Run.OutputDir)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	cm := NewConfigManager().WithEnv(envFrom(map[string]string{
		"NSLAUNCH_RUN_ID":      "attempt7",
		"NSLAUNCH_CLUSTER":     "oci-phx",
		"NSLAUNCH_NUM_CHUNKS":  "32",
		"NSLAUNCH_TEMPERATURE": "0",
	}))

	cfg, err := cm.LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Run.ID != "attempt7" {
		t.Fatalf("expected env run id override, got %s", cfg.Run.ID)
	}
	if cfg.Cluster.Name != "oci-phx" {
		t.Fatalf("expected env cluster override, got %s", cfg.Cluster.Name)
	}
	if cfg.Benchmark.NumChunks != 32 {
		t.Fatalf("expected env chunk override, got %d", cfg.Benchmark.NumChunks)
	}
	if cfg.Inference.Temperature != 0 {
		t.Fatalf("expected greedy temperature override, got %v", cfg.Inference.Temperature)
	}
}

func TestLoadConfigEnvOverrideParsingErrors(t *testing.T) {
	cm := NewConfigManager().WithEnv(envFrom(map[string]string{
		"NSLAUNCH_NUM_CHUNKS": "not-a-number",
	}))

	if _, err := cm.LoadConfig(writeConfig(t, minimalConfig)); err == nil {
		t.Fatal("LoadConfig expected to error for invalid chunk count")
	}
}

func TestLoadConfigWithoutFileRequiresIdentity(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	if _, err := cm.LoadConfig(""); err == nil {
		t.Fatal("LoadConfig expected to error without model path and cluster")
	}
}

func TestValidateConfigRejectsBadSampling(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	cases := map[string]func(*LaunchConfig){
		"temperature too high": func(c *LaunchConfig) { c.Inference.Temperature = 2.5 },
		"negative temperature": func(c *LaunchConfig) { c.Inference.Temperature = -0.1 },
		"top_p above one":      func(c *LaunchConfig) { c.Inference.TopP = 1.5 },
		"zero top_k":           func(c *LaunchConfig) { c.Inference.TopK = 0 },
		"top_k below -1":       func(c *LaunchConfig) { c.Inference.TopK = -2 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultLaunchConfig()
			cfg.Run.ID = "attempt1"
			cfg.Model.Path = "/checkpoints/m"
			cfg.Cluster.Name = "oci-iad"
			mutate(cfg)

			if err := cm.ValidateConfig(cfg); err == nil {
				t.Fatal("ValidateConfig expected to reject config")
			}
		})
	}
}

func TestValidateConfigRejectsTraversalOutputDir(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	cfg := DefaultLaunchConfig()
	cfg.Run.ID = "attempt1"
	cfg.Model.Path = "/checkpoints/m"
	cfg.Cluster.Name = "oci-iad"
	cfg.Run.OutputDir = "results/../../etc"

	if err := cm.ValidateConfig(cfg); err == nil {
		t.Fatal("ValidateConfig expected to reject traversal output dir")
	}
}

func TestMergeConfigsOverridePrecedence(t *testing.T) {
	cm := NewConfigManager()

	base := DefaultLaunchConfig()
	base.Run.ID = "base-run"
	base.Model.Path = "/checkpoints/base"
	base.Cluster.Name = "oci-iad"

	override := &LaunchConfig{}
	override.Run.ID = "override-run"
	override.Benchmark.NumChunks = 64
	override.Agent.Commit = "abc1234"

	merged := cm.MergeConfigs(base, override)

	if merged.Run.ID != "override-run" {
		t.Fatalf("expected override run id, got %s", merged.Run.ID)
	}
	if merged.Model.Path != "/checkpoints/base" {
		t.Fatalf("expected base model path kept, got %s", merged.Model.Path)
	}
	if merged.Benchmark.NumChunks != 64 {
		t.Fatalf("expected override chunks, got %d", merged.Benchmark.NumChunks)
	}
	if merged.Agent.Commit != "abc1234" {
		t.Fatalf("expected override commit, got %s", merged.Agent.Commit)
	}
	if base.Run.ID != "base-run" {
		t.Fatal("MergeConfigs must not mutate the base config")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cm := NewConfigManager().WithEnv(noEnv)

	cfg := DefaultLaunchConfig()
	cfg.Run.ID = "attempt1"
	cfg.Model.Path = "/checkpoints/qwen-32b"
	cfg.Cluster.Name = "oci-iad"
	cfg.Agent.Commit = "deadbeef"

	path := filepath.Join(t.TempDir(), "nested", "launch.yaml")
	if err := cm.SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := cm.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if loaded.Run.ID != cfg.Run.ID || loaded.Agent.Commit != cfg.Agent.Commit {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}
