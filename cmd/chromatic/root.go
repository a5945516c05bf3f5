package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"chromatic/internal/config"
	"chromatic/internal/observability"
	"chromatic/pkg/browser"
	"chromatic/pkg/resource"
	"chromatic/pkg/text"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app carries what PersistentPreRunE sets up for the subcommands.
type app struct {
	cfgFile string
	width   int
	height  int

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "chromatic",
		Short:         "A small web page renderer.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./chromatic.yaml)")
	flags.IntVar(&a.width, "width", 0, "viewport width in pixels (overrides config)")
	flags.IntVar(&a.height, "height", 0, "viewport height in pixels (overrides config)")

	root.AddCommand(newRenderCmd(a), newTreeCmd(a), newPaintCmd(a), newDiffCmd(a))
	return root
}

func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), a.cfgFile)
	if err != nil {
		observability.InitializeLogger(config.NewDefaultConfig().Logger)
		return err
	}
	if cmd.Flags().Changed("width") {
		cfg.Viewport.Width = a.width
	}
	if cmd.Flags().Changed("height") {
		cfg.Viewport.Height = a.height
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	observability.InitializeLogger(cfg.Logger)
	a.cfg = cfg
	a.log = observability.GetLogger()
	a.log.Debug("Configuration loaded",
		zap.String("version", Version),
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height),
	)
	return nil
}

// load builds a browser over real fonts and the network client and
// navigates it to rawURL.
func (a *app) load(ctx context.Context, rawURL string) (*browser.Browser, *text.Faces, error) {
	faces, err := text.NewFaces(a.cfg.Fonts, a.log)
	if err != nil {
		return nil, nil, err
	}
	client := resource.NewClient(resource.Options{
		Timeout:      a.cfg.Network.Timeout,
		UserAgent:    a.cfg.Network.UserAgent,
		MaxBodyBytes: a.cfg.Network.MaxBodyBytes,
	}, a.log)
	b := browser.New(client, faces, browserOptions(a.cfg), a.log)
	if err := b.Load(ctx, rawURL); err != nil {
		return nil, nil, err
	}
	return b, faces, nil
}

func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		Width:                 float64(cfg.Viewport.Width),
		Height:                float64(cfg.Viewport.Height),
		ScrollStep:            cfg.Scroll.Step,
		WheelFactor:           cfg.Scroll.WheelFactor,
		ScrollbarUnit:         cfg.Scroll.ScrollbarUnit,
		StylesheetConcurrency: cfg.Network.StylesheetConcurrency,
	}
}
