package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "nslaunch",
		Short: "Launch NeMo-Skills evaluation jobs from a config file",
		Long: `nslaunch is a configuration front-end over the NeMo-Skills eval harness.

It assembles a single "ns eval" invocation from a YAML launch config
(with NSLAUNCH_* environment and flag overrides layered on top), runs it
synchronously and exits with the harness's exit code. It also ships the
SWE-bench dataset preparation helpers used to build location-annotated
dataset variants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return fmt.Errorf("load env file %s: %w", opts.envFile, err)
				}
			} else if _, err := os.Stat(".env"); err == nil {
				// Best effort: a local .env is convenience, not a requirement.
				_ = godotenv.Load()
			}

			if opts.configPath == "" {
				opts.configPath = viper.GetString("config")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the launch config YAML")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment variables from this file before running")

	viper.SetEnvPrefix("NSLAUNCH")
	viper.AutomaticEnv()
	_ = viper.BindEnv("config")

	rootCmd.AddCommand(newEvalCommand(opts))
	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newPrepareCommand())

	return rootCmd
}
