package main

import (
	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
)

type rootOptions struct {
	configFile string
	command    string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "gestureback",
		Short: "Enable full-screen gesture navigation through the privilege broker",
		Long: "gestureback runs one configured command with broker privileges, shows\n" +
			"whether it worked and exits. When the broker is not running it opens\n" +
			"the broker companion instead.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := openLog(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			s, err := newSession(cfg, logger)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), s)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/gestureback/config.cue)")
	root.PersistentFlags().StringVar(&opts.command, "command", "", "command to run (overrides command)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newExecCmd(opts))
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) (*config.App, error) {
	overrides := map[string]any{}
	if o.command != "" {
		overrides["command"] = o.command
	}
	if o.verbose {
		overrides["log.level"] = "debug"
	}
	return config.LoadApp(cmd.Context(), config.LoadOptions{ConfigFilePath: o.configFile, Overrides: overrides})
}
