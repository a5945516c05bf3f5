package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chromatic/pkg/html"
	"chromatic/pkg/layout"
)

func newTreeCmd(a *app) *cobra.Command {
	var showLayout bool
	cmd := &cobra.Command{
		Use:   "tree <url>",
		Short: "Print the document tree of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, html.PrintTree(b.Nodes()))
			if showLayout {
				fmt.Fprintln(out)
				fmt.Fprint(out, layout.Dump(b.Document()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLayout, "layout", false, "also print the layout tree")
	return cmd
}
