package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newExecCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec",
		Short: "Run without the terminal UI, printing each screen as a line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				Prefix:          "gestureback",
				ReportTimestamp: true,
				Level:           cfg.Log.ParsedLevel(),
			})

			s, err := newSession(cfg, logger)
			if err != nil {
				return err
			}
			return runHeadless(cmd.Context(), s, cmd.OutOrStdout())
		},
	}
}
