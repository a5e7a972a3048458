package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nslaunch/internal/config"
	"nslaunch/internal/launch"
)

// newRenderCommand creates the dry-run command.
func newRenderCommand(opts *rootOptions) *cobra.Command {
	overrides := &launchOverrides{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the ns eval command without executing it",
		Long: `Render the exact command and child-environment delta a launch would use.

Nothing is executed; this is the golden-file view of the invocation.`,
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
			fmt.Fprintln(out, inv.String())
			for _, kv := range inv.ExtraEnv {
				fmt.Fprintf(out, "# env: %s\n", kv)
			}
			return nil
		},
	}

	overrides.register(cmd)
	return cmd
}
