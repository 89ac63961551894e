package main

import (
	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
)

type rootOptions struct {
	configFile string
	socket     string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "broker",
		Short:         "Privilege broker for gestureback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is "+config.DefaultBrokerConfigPath+")")
	root.PersistentFlags().StringVar(&opts.socket, "socket", "", "admin socket path (overrides admin.socket)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newPendingCmd(opts))
	root.AddCommand(newDecideCmd(opts, true))
	root.AddCommand(newDecideCmd(opts, false))
	root.AddCommand(newRevokeCmd(opts))

	return root
}

func (o *rootOptions) load(cmd *cobra.Command, overrides map[string]any) (*config.Broker, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if o.socket != "" {
		overrides["admin.socket"] = o.socket
	}
	return config.LoadBroker(cmd.Context(), config.LoadOptions{ConfigFilePath: o.configFile, Overrides: overrides})
}

func (o *rootOptions) admin(cmd *cobra.Command) (*adminClient, error) {
	cfg, err := o.load(cmd, nil)
	if err != nil {
		return nil, err
	}
	return newAdminClient(cfg.Admin.Socket), nil
}
