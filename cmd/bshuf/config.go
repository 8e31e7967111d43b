package main

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robert-malhotra/go-bitshuffle/frame"
)

const (
	envPrefix        = "BSHUF"
	defaultCodec     = "zstd"
	defaultPrefilter = "bitshuffle"
	defaultLogLevel  = "info"
)

// Config holds the command configuration
type Config struct {
	ElemSize    int       `mapstructure:"elem-size"`
	BlockSize   int       `mapstructure:"block-size"`
	Codec       string    `mapstructure:"codec"`
	Level       int       `mapstructure:"level"`
	Prefilter   string    `mapstructure:"prefilter"`
	Delta       bool      `mapstructure:"delta"`
	Checksum    bool      `mapstructure:"checksum"`
	Concurrency int       `mapstructure:"concurrency"`
	Verbose     bool      `mapstructure:"verbose"`
	Log         LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// loadConfig merges, lowest first: defaults, the config file named by
// --config, BSHUF_* environment variables and flags set on the command
// line.
func loadConfig(fs *flag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("elem-size", 1)
	v.SetDefault("block-size", frame.DefaultBlockSize)
	v.SetDefault("codec", defaultCodec)
	v.SetDefault("level", 0)
	v.SetDefault("prefilter", defaultPrefilter)
	v.SetDefault("delta", false)
	v.SetDefault("checksum", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("log.level", defaultLogLevel)

	// BSHUF_ELEM_SIZE, BSHUF_LOG_LEVEL, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.ElemSize < 1 {
		return fmt.Errorf("elem-size must be at least 1, got %d", cfg.ElemSize)
	}
	if cfg.BlockSize < 1 {
		return fmt.Errorf("block-size must be at least 1, got %d", cfg.BlockSize)
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if _, err := frame.ParseCodec(cfg.Codec); err != nil {
		return err
	}
	if _, err := frame.ParsePrefilter(cfg.Prefilter); err != nil {
		return err
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	return nil
}

// logLevel returns the configured level; --verbose forces debug.
func (c *Config) logLevel() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// frameOptions converts the configuration to frame options.
func (c *Config) frameOptions() []frame.Option {
	codec, _ := frame.ParseCodec(c.Codec)
	prefilter, _ := frame.ParsePrefilter(c.Prefilter)
	return []frame.Option{
		frame.WithCodec(codec),
		frame.WithLevel(c.Level),
		frame.WithElemSize(c.ElemSize),
		frame.WithBlockSize(c.BlockSize),
		frame.WithPrefilter(prefilter),
		frame.WithDelta(c.Delta),
		frame.WithChecksum(c.Checksum),
		frame.WithConcurrency(c.Concurrency),
	}
}
