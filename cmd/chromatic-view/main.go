// Command chromatic-view is a window that loads pages and lets you scroll
// through them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"chromatic/internal/config"
	"chromatic/internal/observability"
	"chromatic/pkg/browser"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:          "chromatic-view [url]",
		Short:        "Open a page in a window.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), cfgFile)
			if err != nil {
				return err
			}
			observability.InitializeLogger(cfg.Logger)
			log := observability.GetLogger()

			faces, err := text.NewFaces(cfg.Fonts, log)
			if err != nil {
				return err
			}
			var start string
			if len(args) > 0 {
				start = args[0]
			}
			run(cfg, faces, start, log)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./chromatic.yaml)")
	return cmd
}

func run(cfg *config.Config, faces *text.Faces, start string, log *zap.Logger) {
	client := resource.NewClient(resource.Options{
		Timeout:      cfg.Network.Timeout,
		UserAgent:    cfg.Network.UserAgent,
		MaxBodyBytes: cfg.Network.MaxBodyBytes,
	}, log)
	b := browser.New(client, faces, browser.Options{
		Width:                 float64(cfg.Viewport.Width),
		Height:                float64(cfg.Viewport.Height),
		ScrollStep:            cfg.Scroll.Step,
		WheelFactor:           cfg.Scroll.WheelFactor,
		ScrollbarUnit:         cfg.Scroll.ScrollbarUnit,
		StylesheetConcurrency: cfg.Network.StylesheetConcurrency,
	}, log)

	a := app.New()
	w := a.NewWindow("chromatic")
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)))

	view := newPageView(b, faces, cfg.Scroll.Throttle, log)
	view.focus = func() { w.Canvas().Focus(view) }
	status := widget.NewLabel("Enter a URL and press Enter")

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.org")
	urlEntry.OnSubmitted = func(url string) {
		status.SetText("Loading " + url + "...")
		go func() {
			err := b.Load(context.Background(), url)
			if errors.Is(err, browser.ErrSuperseded) {
				return
			}
			fyne.Do(func() {
				if err != nil {
					status.SetText("Error: " + err.Error())
					return
				}
				status.SetText(b.URL().String())
				w.SetTitle(windowTitle(b))
				view.raster.Refresh()
				w.Canvas().Focus(view)
			})
		}()
	}

	content := container.NewBorder(urlEntry, status, nil, nil, view)
	w.SetContent(content)
	w.Canvas().Focus(urlEntry)

	if start != "" {
		urlEntry.SetText(start)
		urlEntry.OnSubmitted(start)
	}
	w.ShowAndRun()
}

func windowTitle(b *browser.Browser) string {
	if title := b.Title(); title != "" {
		return "chromatic - " + title
	}
	return "chromatic - " + b.URL().String()
}
