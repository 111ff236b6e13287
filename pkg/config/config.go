// Package config loads CLI configuration from formfields.yaml, FORMFIELDS_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-formfields/pkg/query"
)

// EnvPrefix prefixes environment overrides: FORMFIELDS_SCHEMA_DIR.
const EnvPrefix = "FORMFIELDS"

// Config is the resolved configuration.
type Config struct {
	Schema SchemaConfig `mapstructure:"schema"`
	Query  QueryConfig  `mapstructure:"query"`
	Log    LogConfig    `mapstructure:"log"`
	Files  FilesConfig  `mapstructure:"files"`
}

// SchemaConfig locates resource definitions.
type SchemaConfig struct {
	// Dir holds YAML/JSON definition documents.
	Dir string `mapstructure:"dir"`
	// OpenAPI is an OpenAPI document whose component schemas become resources.
	OpenAPI string `mapstructure:"openapi"`
}

// QueryConfig configures SQL rendering.
type QueryConfig struct {
	Dialect string `mapstructure:"dialect"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// FilesConfig configures file field URLs.
type FilesConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load reads path, or formfields.yaml from the working directory when path is
// empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("schema.dir", "resources")
	v.SetDefault("schema.openapi", "")
	v.SetDefault("query.dialect", query.SQLite.String())
	v.SetDefault("log.level", "info")
	v.SetDefault("files.base_url", "/storage")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formfields")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if _, err := cfg.Dialect(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Dialect parses Query.Dialect.
func (c *Config) Dialect() (query.Dialect, error) {
	return query.ParseDialect(c.Query.Dialect)
}
