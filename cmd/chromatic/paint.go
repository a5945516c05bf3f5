package main

import (
	"fmt"
	"io"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"chromatic/pkg/render"
)

// paintEntry tags a command with its kind in JSON output.
type paintEntry struct {
	Type    string         `json:"type"`
	Command render.Command `json:"command"`
}

func newPaintCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		visible bool
	)
	cmd := &cobra.Command{
		Use:   "paint <url>",
		Short: "Print the display list of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmds := b.DisplayList()
			if visible {
				cmds = b.Visible()
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cmds)
			}
			writeText(cmd.OutOrStdout(), cmds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the display list as JSON")
	cmd.Flags().BoolVar(&visible, "visible", false, "only print commands inside the first viewport")
	return cmd
}

func commandType(c render.Command) string {
	switch c.(type) {
	case *render.DrawText:
		return "text"
	case *render.DrawRect:
		return "rect"
	}
	return "unknown"
}

func writeJSON(w io.Writer, cmds []render.Command) error {
	entries := make([]paintEntry, len(cmds))
	for i, c := range cmds {
		entries[i] = paintEntry{Type: commandType(c), Command: c}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding display list: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, cmds []render.Command) {
	for _, c := range cmds {
		switch c := c.(type) {
		case *render.DrawText:
			fmt.Fprintf(w, "text %7.2f %7.2f %-8s %-20s %q\n", c.X, c.Y, c.Color, c.Font, c.Text)
		case *render.DrawRect:
			fmt.Fprintf(w, "rect %7.2f %7.2f %7.2f %7.2f %s\n", c.Left, c.Top, c.Right, c.Bottom, c.Color)
		}
	}
}
