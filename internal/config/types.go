package config

// RunConfig identifies a single evaluation attempt.
type RunConfig struct {
	// ID distinguishes this run's outputs from other attempts against the
	// same checkpoint (e.g. "qwen32b-attempt3").
	ID string `json:"id" yaml:"id"`

	// Expname and OutputDir may reference {run_id}, {model_size} and
	// {benchmark}; placeholders are expanded when the invocation is built.
	Expname   string `json:"expname,omitempty" yaml:"expname,omitempty"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

// ModelConfig describes the checkpoint being evaluated.
type ModelConfig struct {
	// Size is a display label ("32b", "70b"), not a resource request.
	Size string `json:"size,omitempty" yaml:"size,omitempty"`
	Path string `json:"path" yaml:"path"`
}

// ClusterConfig carries the cluster identity and server resource shape.
type ClusterConfig struct {
	Name            string `json:"name" yaml:"name"`
	ServerType      string `json:"server_type,omitempty" yaml:"server_type,omitempty"`
	ServerNodes     int    `json:"server_nodes,omitempty" yaml:"server_nodes,omitempty"`
	ServerGPUs      int    `json:"server_gpus,omitempty" yaml:"server_gpus,omitempty"`
	ServerArgs      string `json:"server_args,omitempty" yaml:"server_args,omitempty"`
	ServerContainer string `json:"server_container,omitempty" yaml:"server_container,omitempty"`
}

// BenchmarkConfig selects the evaluation suite and its sharding.
type BenchmarkConfig struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Split         string `json:"split,omitempty" yaml:"split,omitempty"`
	NumChunks     int    `json:"num_chunks,omitempty" yaml:"num_chunks,omitempty"`
	DependentJobs int    `json:"dependent_jobs,omitempty" yaml:"dependent_jobs,omitempty"`
}

// AgentConfig pins the agent harness used during evaluation.
type AgentConfig struct {
	Framework string `json:"framework,omitempty" yaml:"framework,omitempty"`
	Repo      string `json:"repo,omitempty" yaml:"repo,omitempty"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
}

// InferenceConfig holds the sampling parameters forwarded to the server.
type InferenceConfig struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
	// TopK of -1 disables top-k filtering, matching the serving engines.
	TopK int `json:"top_k" yaml:"top_k"`
}

// LaunchConfig is the full set of parameters for one evaluation launch.
//
// Values are fixed once LoadConfig returns; nothing mutates them afterwards.
type LaunchConfig struct {
	Run       RunConfig       `json:"run" yaml:"run"`
	Model     ModelConfig     `json:"model" yaml:"model"`
	Cluster   ClusterConfig   `json:"cluster" yaml:"cluster"`
	Benchmark BenchmarkConfig `json:"benchmark" yaml:"benchmark"`
	Agent     AgentConfig     `json:"agent" yaml:"agent"`
	Inference InferenceConfig `json:"inference" yaml:"inference"`
}

// DefaultLaunchConfig returns the baseline configuration. Model path and
// cluster name have no sensible defaults and must come from the config file,
// environment or flags.
func DefaultLaunchConfig() *LaunchConfig {
	return &LaunchConfig{
		Run: RunConfig{
			Expname:   "{benchmark}-{model_size}-{run_id}",
			OutputDir: "/results/{benchmark}/{model_size}/{run_id}",
		},
		Model: ModelConfig{
			Size: "32b",
		},
		Cluster: ClusterConfig{
			ServerType:  "vllm",
			ServerNodes: 1,
			ServerGPUs:  8,
		},
		Benchmark: BenchmarkConfig{
			Name:      "swe-bench",
			Split:     "test",
			NumChunks: 8,
		},
		Agent: AgentConfig{
			Framework: "swe_agent",
			Repo:      "https://github.com/SWE-agent/SWE-agent",
		},
		Inference: InferenceConfig{
			Temperature: 0.6,
			TopP:        0.95,
			TopK:        20,
		},
	}
}
