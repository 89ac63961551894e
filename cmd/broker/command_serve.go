package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var address string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the broker daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if address != "" {
				overrides["address"] = address
			}
			if verbose {
				overrides["log.level"] = "debug"
			}
			cfg, err := opts.load(cmd, overrides)
			if err != nil {
				return err
			}

			logger := log.NewWithOptions(os.Stderr, log.Options{
				Prefix:          "broker",
				ReportTimestamp: true,
				Level:           cfg.Log.ParsedLevel(),
			})
			runner.SetLogger(logger)
			if cfg.Source != "" {
				logger.Info("loaded config", "path", cfg.Source)
			}

			srv, err := NewGRPCServer(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("broker (TLS) listening", "address", srv.Addr(), "admin", cfg.Admin.Socket, "version", version)
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides address)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
