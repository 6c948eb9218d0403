package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/vigil/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve watch commands from stdin and emit event batches on stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			logFormat, _ := cmd.Flags().GetString("log-format")
			debug, _ := cmd.Flags().GetBool("debug")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				ConfigPath: configPath,
				LogFormat:  logFormat,
				Debug:      debug,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to the configuration file (default: vigil.yaml in the working directory)")
	cmd.Flags().StringP("log-format", "o", "auto", "Diagnostics format: auto, pretty, or json")
	cmd.Flags().BoolP("debug", "d", false, "Enable debug diagnostics for the whole process")
	return cmd
}
