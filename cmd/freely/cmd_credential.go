package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freely-dev/freely/internal/host"
)

func init() {
	rootCmd.AddCommand(credentialCmd)
	credentialCmd.AddCommand(credentialSetCmd, credentialGetCmd)
}

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage tool credentials",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Store a credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(host.Unavailable{})
		if err := app.creds.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("set credential: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Set %s = ***\n", args[0])
		return nil
	},
}

var credentialGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Look up a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(host.Unavailable{})
		v, ok := app.creds.Get(args[0])
		if !ok {
			return fmt.Errorf("credential %s not set", args[0])
		}
		fmt.Fprintln(os.Stdout, v)
		return nil
	},
}
