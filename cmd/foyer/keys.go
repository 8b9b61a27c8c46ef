package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/push"
)

func hashCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-code <code>",
		Short: "Hash a 4-digit parent code for auth.parent_code_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashCode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func vapidKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for the push section of the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "push:")
			fmt.Fprintf(out, "  vapid_public_key: %s\n", pub)
			fmt.Fprintf(out, "  vapid_private_key: %s\n", priv)
			return nil
		},
	}
}
