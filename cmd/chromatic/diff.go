package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chromatic/pkg/visualtest"
)

var errImagesDiffer = errors.New("images differ")

func newDiffCmd(a *app) *cobra.Command {
	var (
		opts    visualtest.Options
		diffOut string
	)
	cmd := &cobra.Command{
		Use:   "diff <actual.png> <expected.png>",
		Short: "Compare two rendered pages pixel by pixel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Diff = diffOut != ""
			result, err := visualtest.CompareFiles(args[0], args[1], opts)
			if err != nil {
				return err
			}
			if result.Diff != nil && !result.Match {
				if err := visualtest.SavePNG(result.Diff, diffOut); err != nil {
					return fmt.Errorf("saving diff image: %w", err)
				}
			}
			a.log.Debug("Compared images",
				zap.Int("different", result.DifferentPixels),
				zap.Int("total", result.TotalPixels),
				zap.Int("max_difference", result.MaxDifference),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d pixels differ (max channel difference %d)\n",
				result.DifferentPixels, result.TotalPixels, result.MaxDifference)
			if !result.Match {
				return errImagesDiffer
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.Tolerance, "tolerance", visualtest.DefaultOptions().Tolerance, "largest per-channel difference treated as equal")
	flags.IntVar(&opts.FuzzyRadius, "fuzzy", 0, "let pixels match neighbours within this radius")
	flags.Float64Var(&opts.MaxDifferentPercent, "max-percent", 0, "accept up to this percentage of differing pixels")
	flags.StringVar(&diffOut, "out", "", "write a diff image here when the images differ")
	return cmd
}
