package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const adminTimeout = 10 * time.Second

func newPendingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List permission decisions and pending requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.admin(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()

			view, err := client.Permissions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPermissions(view, time.Now()))
			return nil
		},
	}
}

func newDecideCmd(opts *rootOptions, granted bool) *cobra.Command {
	use, short := "deny <identity>", "Deny an identity and answer its pending requests"
	if granted {
		use, short = "grant <identity>", "Grant an identity and answer its pending requests"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.admin(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()

			view, err := client.Decide(ctx, args[0], granted)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDecision(view))
			return nil
		},
	}
}

func newRevokeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <identity>",
		Short: "Forget the decision for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.admin(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
			defer cancel()

			if err := client.Revoke(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
			return nil
		},
	}
}
