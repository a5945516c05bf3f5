package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chromatic/pkg/layout"
	"chromatic/pkg/text"
)

// EnvPrefix is prepended to environment overrides, e.g.
// CHROMATIC_VIEWPORT_WIDTH=1024.
const EnvPrefix = "CHROMATIC"

type Config struct {
	Logger   LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Viewport ViewportConfig  `mapstructure:"viewport" yaml:"viewport"`
	Scroll   ScrollConfig    `mapstructure:"scroll" yaml:"scroll"`
	Network  NetworkConfig   `mapstructure:"network" yaml:"network"`
	Fonts    text.FontConfig `mapstructure:"fonts" yaml:"fonts"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color of each log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig is the initial window size in pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ScrollConfig tunes how input events move the page.
type ScrollConfig struct {
	Step          float64       `mapstructure:"step" yaml:"step"`
	WheelFactor   float64       `mapstructure:"wheel_factor" yaml:"wheel_factor"`
	ScrollbarUnit float64       `mapstructure:"scrollbar_unit" yaml:"scrollbar_unit"`
	Throttle      time.Duration `mapstructure:"throttle" yaml:"throttle"`
}

type NetworkConfig struct {
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent             string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes          int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	StylesheetConcurrency int           `mapstructure:"stylesheet_concurrency" yaml:"stylesheet_concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "chromatic")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Viewport --
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	// -- Scroll --
	v.SetDefault("scroll.step", 100)
	v.SetDefault("scroll.wheel_factor", 5)
	v.SetDefault("scroll.scrollbar_unit", 40)
	v.SetDefault("scroll.throttle", "10ms")

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.user_agent", "")
	v.SetDefault("network.max_body_bytes", 16<<20)
	v.SetDefault("network.stylesheet_concurrency", 4)

	// -- Fonts (empty selects the bundled Go fonts) --
	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.bold", "")
	v.SetDefault("fonts.italic", "")
	v.SetDefault("fonts.bold_italic", "")
}

// Load reads cfgFile, or chromatic.yaml from the working directory when
// cfgFile is empty, applies CHROMATIC_* environment overrides and validates
// the result. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("chromatic")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 2*layout.HStep || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive and wider than its margins, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Scroll.Step <= 0 {
		return fmt.Errorf("scroll.step must be positive")
	}
	if c.Scroll.Throttle < 0 {
		return fmt.Errorf("scroll.throttle must not be negative")
	}
	if c.Network.StylesheetConcurrency <= 0 {
		return fmt.Errorf("network.stylesheet_concurrency must be a positive integer")
	}
	return nil
}
