package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chromatic/pkg/layout"
	"chromatic/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		scroll float64
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render a page to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, faces, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			width, height := a.cfg.Viewport.Width, a.cfg.Viewport.Height
			if full {
				height = int(b.Document().Height + 2*layout.VStep)
				b.Resize(float64(width), float64(height))
			}
			b.ScrollBy(scroll)

			canvas := render.NewCanvas(width, height, faces, a.log)
			b.Draw(canvas)
			if err := canvas.SavePNG(output); err != nil {
				return err
			}
			a.log.Info("Rendered page",
				zap.String("output", output),
				zap.Int("width", width),
				zap.Int("height", height),
				zap.Float64("scroll", b.Scroll()),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG file path")
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "scroll offset in pixels")
	cmd.Flags().BoolVar(&full, "full", false, "render the whole page instead of one viewport")
	return cmd
}
