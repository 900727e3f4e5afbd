package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"honnef.co/go/subdiv/presets"
)

func newPresetsCmd() *SubCommand {
	return newSubCommand(&cobra.Command{
		Use:   "presets",
		Short: "List the built-in curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, name := range presets.Names() {
				p, _ := presets.Lookup(name)
				c := p.Build()
				kind := "open"
				if c.Closed {
					kind = "closed"
				}
				fmt.Fprintf(tw, "%s\t%s, %d vertices\t%s\n", name, kind, c.Len(), p.Description)
			}
			return tw.Flush()
		},
	})
}
