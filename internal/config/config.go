// Package config loads the sqlast command configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/sqlast/internal/log"
)

// Config is the command configuration. Flags override file values.
type Config struct {
	Log     log.Config `yaml:"log"`
	Dialect string     `yaml:"dialect"`
	Version string     `yaml:"version,omitempty"` // empty selects the dialect default
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{Dialect: "db2", Log: log.DefaultConfig()}
}

// Load reads a YAML configuration file over the defaults. A missing file
// at an empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes YAML into cfg, keeping values the document omits.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if cfg.Dialect == "" {
		return fmt.Errorf("dialect is required")
	}
	return nil
}
