package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freely-dev/freely/internal/host"
)

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect agent tool adapters",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools and their capabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(host.Unavailable{})
		ctx := context.Background()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tINSTALLED\tCAPABILITIES")
		for _, a := range app.registry.All() {
			var caps []string
			for c, ok := range a.Capabilities() {
				if ok {
					caps = append(caps, string(c))
				}
			}
			sort.Strings(caps)
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n",
				a.Name(),
				a.ToolType(),
				a.CheckInstalled(ctx),
				strings.Join(caps, ","),
			)
		}
		return w.Flush()
	},
}
