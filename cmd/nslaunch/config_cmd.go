package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"nslaunch/internal/config"
)

// newConfigCommand groups the config management subcommands.
func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage launch configuration files",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(opts))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default launch config template",
		Long: `Write the default launch configuration to a file.

The template is the intended starting point for per-run edits: fill in
run.id, model.path and cluster.name, then launch with "nslaunch eval".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm := config.NewConfigManager()
			if path == "" {
				path = cm.GetDefaultConfigPath()
			}

			if err := cm.SaveConfig(config.DefaultLaunchConfig(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", green("✓"), bold(path))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", gray("fill in run.id, model.path and cluster.name before launching"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", "", "where to write the template (default: ~/.nslaunch/launch.yaml)")
	return cmd
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective launch configuration",
		Long: `Load the config the way eval would (defaults, file, NSLAUNCH_* environment)
and print the merged result as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm := config.NewConfigManager()
			cfg, err := cm.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	return cmd
}
