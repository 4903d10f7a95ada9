package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "identityd",
		Short:        "Identity service: accounts, login and role-gated user management",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newUserCommand())
	return root
}
