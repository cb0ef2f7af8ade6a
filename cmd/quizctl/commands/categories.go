package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// categories: list every category with its question count.
func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with question counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			counts := s.Counts()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range s.Categories() {
				fmt.Fprintf(tw, "%s\t%d\n", name, counts[name])
			}
			return tw.Flush()
		},
	}
}
