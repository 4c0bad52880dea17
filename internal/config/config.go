// Package config loads brickgen settings from an optional YAML file,
// BRICKGEN_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "BRICKGEN"

// Keys understood by the config file and environment
const (
	KeyOutput   = "output"
	KeyFormat   = "format"
	KeySite     = "site"
	KeyDB       = "db"
	KeyLogLevel = "log_level"
)

// Config holds the resolved settings
type Config struct {
	Output   string
	Format   rdf.Format
	Site     string // empty means the bundled example site
	DB       string
	LogLevel zerolog.Level
}

// New returns a viper instance with defaults and environment binding applied
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyOutput, "example.ttl")
	v.SetDefault(KeyFormat, string(rdf.FormatTurtle))
	v.SetDefault(KeySite, "")
	v.SetDefault(KeyDB, "./brickgen_data")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) into v and resolves the settings.
// A missing file is an error only when a path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("brickgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	format, err := rdf.ParseFormat(v.GetString(KeyFormat))
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString(KeyLogLevel)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := &Config{
		Output:   v.GetString(KeyOutput),
		Format:   format,
		Site:     v.GetString(KeySite),
		DB:       v.GetString(KeyDB),
		LogLevel: level,
	}
	if cfg.Output == "" {
		return nil, errors.New("output path must not be empty")
	}
	return cfg, nil
}
