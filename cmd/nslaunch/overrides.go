package main

import (
	"github.com/spf13/cobra"

	"nslaunch/internal/config"
)

// launchOverrides are per-invocation flag overrides layered on top of the
// loaded config, mirroring the fields people actually edit between runs.
type launchOverrides struct {
	runID       string
	expname     string
	outputDir   string
	modelPath   string
	modelSize   string
	cluster     string
	split       string
	numChunks   int
	dependent   int
	temperature float64
	topP        float64
	topK        int
}

func (o *launchOverrides) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.runID, "run-id", "", "run identifier (overrides run.id)")
	flags.StringVar(&o.expname, "expname", "", "experiment name template (overrides run.expname)")
	flags.StringVar(&o.outputDir, "output-dir", "", "output directory template (overrides run.output_dir)")
	flags.StringVar(&o.modelPath, "model", "", "model checkpoint path (overrides model.path)")
	flags.StringVar(&o.modelSize, "model-size", "", "model size label (overrides model.size)")
	flags.StringVar(&o.cluster, "cluster", "", "cluster name (overrides cluster.name)")
	flags.StringVar(&o.split, "split", "", "benchmark split (overrides benchmark.split)")
	flags.IntVar(&o.numChunks, "num-chunks", 0, "number of chunks (overrides benchmark.num_chunks)")
	flags.IntVar(&o.dependent, "dependent-jobs", 0, "dependent job count (overrides benchmark.dependent_jobs)")
	flags.Float64Var(&o.temperature, "temperature", 0, "sampling temperature (overrides inference.temperature)")
	flags.Float64Var(&o.topP, "top-p", 0, "sampling top_p (overrides inference.top_p)")
	flags.IntVar(&o.topK, "top-k", 0, "sampling top_k (overrides inference.top_k)")
}

// apply merges the overrides into cfg and returns the result. Sampling
// parameters go through explicit Changed checks so 0 stays expressible.
func (o *launchOverrides) apply(cmd *cobra.Command, cm *config.ConfigManager, cfg *config.LaunchConfig) (*config.LaunchConfig, error) {
	override := &config.LaunchConfig{}
	override.Run.ID = o.runID
	override.Run.Expname = o.expname
	override.Run.OutputDir = o.outputDir
	override.Model.Path = o.modelPath
	override.Model.Size = o.modelSize
	override.Cluster.Name = o.cluster
	override.Benchmark.Split = o.split
	override.Benchmark.NumChunks = o.numChunks
	override.Benchmark.DependentJobs = o.dependent

	merged := cm.MergeConfigs(cfg, override)

	flags := cmd.Flags()
	if flags.Changed("temperature") {
		merged.Inference.Temperature = o.temperature
	}
	if flags.Changed("top-p") {
		merged.Inference.TopP = o.topP
	}
	if flags.Changed("top-k") {
		merged.Inference.TopK = o.topK
	}
	if flags.Changed("dependent-jobs") {
		merged.Benchmark.DependentJobs = o.dependent
	}

	if err := cm.ValidateConfig(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
