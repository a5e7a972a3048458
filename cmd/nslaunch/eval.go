package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nslaunch/internal/config"
	"nslaunch/internal/launch"
)

// newEvalCommand creates the eval launch command.
func newEvalCommand(opts *rootOptions) *cobra.Command {
	overrides := &launchOverrides{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Launch an evaluation job via ns eval",
		Long: `Assemble the ns eval invocation from the launch config and run it.

The command blocks until the harness exits and propagates its exit code.
There are no retries and no output parsing; failures surface exactly as
the harness reports them.

Examples:
  nslaunch eval --config launch.yaml
  nslaunch eval -c launch.yaml --run-id attempt4 --num-chunks 16
  NSLAUNCH_CLUSTER=oci-phx nslaunch eval -c launch.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm := config.NewConfigManager()
			cfg, err := cm.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			cfg, err = overrides.apply(cmd, cm, cfg)
			if err != nil {
				return err
			}

			inv, err := launch.Build(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", bold("Launching:"), cyan(inv.String()))
			fmt.Fprintf(out, "%s %s\n", gray("env:"), gray(launch.DisableUncommittedCheckEnv+"=1"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := launch.NewExecRunner()
			runErr := runner.Run(ctx, inv)
			if code := launch.ExitCode(runErr); code != 0 {
				return &ExitCodeError{Code: code, Err: runErr}
			}

			fmt.Fprintf(out, "%s run %s submitted\n", green("✓"), bold(cfg.Run.ID))
			return nil
		},
	}

	overrides.register(cmd)
	return cmd
}
