package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "signet",
		Short:         "RSA signature service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newServeCmd(),
		newKeygenCmd(),
		newSignCmd(),
		newVerifyCmd(),
	)
	return cmd
}
