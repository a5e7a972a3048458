package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvLookup resolves an environment variable, mirroring os.LookupEnv. Tests
// inject their own lookup instead of mutating the process environment.
type EnvLookup func(key string) (string, bool)

// ConfigManager handles launch configuration management.
type ConfigManager struct {
	defaultConfig *LaunchConfig
	env           EnvLookup
}

// NewConfigManager creates a new configuration manager backed by the process
// environment.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		defaultConfig: DefaultLaunchConfig(),
		env:           os.LookupEnv,
	}
}

// WithEnv overrides the environment lookup used for NSLAUNCH_* overrides.
func (cm *ConfigManager) WithEnv(lookup EnvLookup) *ConfigManager {
	cm.env = lookup
	return cm
}

// LoadConfig loads configuration: defaults, then the YAML file when a path
// is given, then NSLAUNCH_* environment overrides, then validation.
func (cm *ConfigManager) LoadConfig(path string) (*LaunchConfig, error) {
	config := *cm.defaultConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := ValidateSchema(data); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cm.applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cm.ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file, creating parent directories.
func (cm *ConfigManager) SaveConfig(config *LaunchConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// ValidateConfig validates a launch configuration, filling defaults for
// fields where zero values make no sense.
func (cm *ConfigManager) ValidateConfig(config *LaunchConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if config.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if config.Cluster.Name == "" {
		return fmt.Errorf("cluster.name is required")
	}
	if config.Run.ID == "" {
		return fmt.Errorf("run.id is required")
	}

	if config.Cluster.ServerType == "" {
		config.Cluster.ServerType = "vllm"
	}
	if config.Cluster.ServerNodes <= 0 {
		config.Cluster.ServerNodes = 1
	}
	if config.Cluster.ServerGPUs <= 0 {
		config.Cluster.ServerGPUs = 8
	}

	if config.Benchmark.Name == "" {
		config.Benchmark.Name = "swe-bench"
	}
	if config.Benchmark.Split == "" {
		config.Benchmark.Split = "test"
	}
	if config.Benchmark.NumChunks <= 0 {
		config.Benchmark.NumChunks = 1
	}
	if config.Benchmark.DependentJobs < 0 {
		return fmt.Errorf("benchmark.dependent_jobs cannot be negative")
	}

	if config.Inference.Temperature < 0 || config.Inference.Temperature > 2 {
		return fmt.Errorf("inference.temperature must be between 0 and 2")
	}
	if config.Inference.TopP <= 0 || config.Inference.TopP > 1 {
		return fmt.Errorf("inference.top_p must be in (0, 1]")
	}
	if config.Inference.TopK < -1 || config.Inference.TopK == 0 {
		return fmt.Errorf("inference.top_k must be positive or -1 to disable")
	}

	if config.Run.OutputDir == "" {
		config.Run.OutputDir = cm.defaultConfig.Run.OutputDir
	}
	cleaned, err := sanitizeOutputDir(config.Run.OutputDir)
	if err != nil {
		return err
	}
	config.Run.OutputDir = cleaned

	if config.Run.Expname == "" {
		config.Run.Expname = cm.defaultConfig.Run.Expname
	}

	return nil
}

// applyEnvOverrides applies NSLAUNCH_* environment variable overrides.
func (cm *ConfigManager) applyEnvOverrides(config *LaunchConfig) error {
	lookup := cm.env
	if lookup == nil {
		lookup = os.LookupEnv
	}

	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s override %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}
	setFloat := func(key string, dst *float64) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s override %q: %w", key, v, err)
		}
		*dst = f
		return nil
	}

	setString("NSLAUNCH_RUN_ID", &config.Run.ID)
	setString("NSLAUNCH_EXPNAME", &config.Run.Expname)
	setString("NSLAUNCH_OUTPUT_DIR", &config.Run.OutputDir)
	setString("NSLAUNCH_MODEL_PATH", &config.Model.Path)
	setString("NSLAUNCH_MODEL_SIZE", &config.Model.Size)
	setString("NSLAUNCH_CLUSTER", &config.Cluster.Name)
	setString("NSLAUNCH_SERVER_TYPE", &config.Cluster.ServerType)
	setString("NSLAUNCH_SERVER_ARGS", &config.Cluster.ServerArgs)
	setString("NSLAUNCH_SERVER_CONTAINER", &config.Cluster.ServerContainer)
	setString("NSLAUNCH_BENCHMARK", &config.Benchmark.Name)
	setString("NSLAUNCH_SPLIT", &config.Benchmark.Split)
	setString("NSLAUNCH_AGENT_FRAMEWORK", &config.Agent.Framework)
	setString("NSLAUNCH_AGENT_REPO", &config.Agent.Repo)
	setString("NSLAUNCH_AGENT_COMMIT", &config.Agent.Commit)

	if err := setInt("NSLAUNCH_SERVER_NODES", &config.Cluster.ServerNodes); err != nil {
		return err
	}
	if err := setInt("NSLAUNCH_SERVER_GPUS", &config.Cluster.ServerGPUs); err != nil {
		return err
	}
	if err := setInt("NSLAUNCH_NUM_CHUNKS", &config.Benchmark.NumChunks); err != nil {
		return err
	}
	if err := setInt("NSLAUNCH_DEPENDENT_JOBS", &config.Benchmark.DependentJobs); err != nil {
		return err
	}
	if err := setInt("NSLAUNCH_TOP_K", &config.Inference.TopK); err != nil {
		return err
	}
	if err := setFloat("NSLAUNCH_TEMPERATURE", &config.Inference.Temperature); err != nil {
		return err
	}
	if err := setFloat("NSLAUNCH_TOP_P", &config.Inference.TopP); err != nil {
		return err
	}

	return nil
}

// MergeConfigs merges two configurations, with override taking precedence.
func (cm *ConfigManager) MergeConfigs(base *LaunchConfig, override *LaunchConfig) *LaunchConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Run.ID != "" {
		result.Run.ID = override.Run.ID
	}
	if override.Run.Expname != "" {
		result.Run.Expname = override.Run.Expname
	}
	if override.Run.OutputDir != "" {
		result.Run.OutputDir = override.Run.OutputDir
	}

	if override.Model.Size != "" {
		result.Model.Size = override.Model.Size
	}
	if override.Model.Path != "" {
		result.Model.Path = override.Model.Path
	}

	if override.Cluster.Name != "" {
		result.Cluster.Name = override.Cluster.Name
	}
	if override.Cluster.ServerType != "" {
		result.Cluster.ServerType = override.Cluster.ServerType
	}
	if override.Cluster.ServerNodes != 0 {
		result.Cluster.ServerNodes = override.Cluster.ServerNodes
	}
	if override.Cluster.ServerGPUs != 0 {
		result.Cluster.ServerGPUs = override.Cluster.ServerGPUs
	}
	if override.Cluster.ServerArgs != "" {
		result.Cluster.ServerArgs = override.Cluster.ServerArgs
	}
	if override.Cluster.ServerContainer != "" {
		result.Cluster.ServerContainer = override.Cluster.ServerContainer
	}

	if override.Benchmark.Name != "" {
		result.Benchmark.Name = override.Benchmark.Name
	}
	if override.Benchmark.Split != "" {
		result.Benchmark.Split = override.Benchmark.Split
	}
	if override.Benchmark.NumChunks != 0 {
		result.Benchmark.NumChunks = override.Benchmark.NumChunks
	}
	if override.Benchmark.DependentJobs != 0 {
		result.Benchmark.DependentJobs = override.Benchmark.DependentJobs
	}

	if override.Agent.Framework != "" {
		result.Agent.Framework = override.Agent.Framework
	}
	if override.Agent.Repo != "" {
		result.Agent.Repo = override.Agent.Repo
	}
	if override.Agent.Commit != "" {
		result.Agent.Commit = override.Agent.Commit
	}

	if override.Inference.Temperature != 0 {
		result.Inference.Temperature = override.Inference.Temperature
	}
	if override.Inference.TopP != 0 {
		result.Inference.TopP = override.Inference.TopP
	}
	if override.Inference.TopK != 0 {
		result.Inference.TopK = override.Inference.TopK
	}

	return &result
}

// GetDefaultConfigPath returns the default configuration file path.
func (cm *ConfigManager) GetDefaultConfigPath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".nslaunch", "launch.yaml")
	}
	return "launch.yaml"
}
