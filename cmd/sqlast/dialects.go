package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zoobzio/sqlast/dialects"
)

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the supported dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tDEFAULT VERSION")
			for _, info := range dialects.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Key, info.Name, info.DefaultVersion)
			}
			return w.Flush()
		},
	}
}
