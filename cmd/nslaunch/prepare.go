package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nslaunch/internal/dataset"
	"nslaunch/internal/logging"
)

// datasetVariants maps the prepare target names to their JSONL files, in
// processing order.
var datasetVariants = []struct {
	name string
	file string
}{
	{"ground_truth", "ground_truth.jsonl"},
	{"ground_truth_wo_lines", "ground_truth_wo_lines.jsonl"},
	{"artsiv", "artsiv.jsonl"},
}

// newPrepareCommand groups the dataset preparation subcommands.
func newPrepareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "SWE-bench dataset preparation utilities",
	}

	cmd.AddCommand(newPrepareLocationsCommand())
	cmd.AddCommand(newPrepareMergeCommand())
	return cmd
}

func newPrepareLocationsCommand() *cobra.Command {
	var (
		datasetDir string
		files      []string
	)

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Extract edit locations embedded in problem statements",
		Long: `Rewrite location-annotated JSONL variants in place.

Locations written into problem_statement text under an
"--- EDIT LOCATIONS ---" section are moved into a structured
edit_locations field; samples without a section lose any stale
edit_locations they carry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewComponentLogger("prepare")

			selected := map[string]bool{}
			for _, f := range files {
				selected[f] = true
			}
			all := len(files) == 0 || selected["all"]

			processed := 0
			for _, variant := range datasetVariants {
				if !all && !selected[variant.name] {
					continue
				}

				path := filepath.Join(datasetDir, variant.file)
				if _, err := os.Stat(path); os.IsNotExist(err) {
					logger.Warn("%s does not exist, skipping", path)
					continue
				}

				stats, err := dataset.ProcessFile(path, variant.name, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d samples, %d with edit_locations\n",
					green("✓"), variant.file, stats.Total, stats.WithLocations)
				processed++
			}

			if processed == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", yellow("nothing to process"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset-dir", ".", "directory containing the JSONL variants")
	cmd.Flags().StringSliceVar(&files, "files", nil,
		"variants to process: ground_truth, ground_truth_wo_lines, artsiv, all (default all)")
	return cmd
}

func newPrepareMergeCommand() *cobra.Command {
	var (
		datasetDir  string
		predictions string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge predicted locations and findings into the base dataset",
		Long: `Stream default.jsonl and join per-instance locations and findings from a
predictions JSONL, producing artsiv_w_findings.jsonl (both fields) and
artsiv_w_locations.jsonl (findings stripped) next to the base dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := dataset.MergeOptions{
				DefaultPath:       filepath.Join(datasetDir, "default.jsonl"),
				PredictionsPath:   predictions,
				WithFindingsPath:  filepath.Join(datasetDir, "artsiv_w_findings.jsonl"),
				LocationsOnlyPath: filepath.Join(datasetDir, "artsiv_w_locations.jsonl"),
			}

			stats, err := dataset.MergeFindings(opts, logging.NewComponentLogger("prepare"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s merged %d records\n", green("✓"), stats.Records)
			fmt.Fprintf(out, "  added locations: %d\n", stats.AddedLocations)
			fmt.Fprintf(out, "  added findings:  %d\n", stats.AddedFindings)
			fmt.Fprintf(out, "  outputs: %s, %s\n", opts.WithFindingsPath, opts.LocationsOnlyPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset-dir", ".", "directory containing default.jsonl")
	cmd.Flags().StringVar(&predictions, "predictions", "", "predictions JSONL with per-instance locations/findings")
	_ = cmd.MarkFlagRequired("predictions")
	return cmd
}
