/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package config loads covidviz configuration from TOML or YAML files, with
// defaults for anything unset and COVIDVIZ_* environment overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultDataset names the dataset used when a request names none.
const DefaultDataset = "default"

// DefaultURL is the dataset fetched by DefaultDataset.
const DefaultURL = "https://covidtracking.com/api/states/daily"

// Duration wraps time.Duration with string parsing, e.g. "30s" or "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete covidviz configuration.
type Config struct {
	Server    ServerConfig             `toml:"server" yaml:"server"`
	Log       LogConfig                `toml:"log" yaml:"log"`
	Selection SelectionConfig          `toml:"selection" yaml:"selection"`
	Datasets  map[string]DatasetConfig `toml:"datasets" yaml:"datasets"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Listen           string `toml:"listen" yaml:"listen"`
	SessionCacheSize int    `toml:"session_cache_size" yaml:"session_cache_size"`
	DatasetCacheSize int    `toml:"dataset_cache_size" yaml:"dataset_cache_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// SelectionConfig configures chart interaction.
type SelectionConfig struct {
	// MinSpan is the smallest drag, in pixels, that completes a selection.
	MinSpan float64 `toml:"min_span" yaml:"min_span"`
	// PlotWidth and PlotHeight are the plot size assumed until a client
	// reports its own.
	PlotWidth  int `toml:"plot_width" yaml:"plot_width"`
	PlotHeight int `toml:"plot_height" yaml:"plot_height"`
}

// DatasetConfig describes where a dataset is fetched from and which JSON
// fields hold each record's category, value and timestamp.
type DatasetConfig struct {
	URL            string   `toml:"url" yaml:"url"`
	CategoryField  string   `toml:"category_field" yaml:"category_field"`
	ValueField     string   `toml:"value_field" yaml:"value_field"`
	TimestampField string   `toml:"timestamp_field" yaml:"timestamp_field"`
	Timeout        Duration `toml:"timeout" yaml:"timeout"`
}

// DefaultDatasetConfig returns the configuration of the covidtracking daily
// states dataset.
func DefaultDatasetConfig() DatasetConfig {
	return DatasetConfig{
		URL:            DefaultURL,
		CategoryField:  "state",
		ValueField:     "positive",
		TimestampField: "dateChecked",
		Timeout:        Duration{30 * time.Second},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:           ":7410",
			SessionCacheSize: 256,
			DatasetCacheSize: 8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Selection: SelectionConfig{
			MinSpan:    1,
			PlotWidth:  800,
			PlotHeight: 400,
		},
		Datasets: map[string]DatasetConfig{
			DefaultDataset: DefaultDatasetConfig(),
		},
	}
}

// Load reads the configuration file at path, choosing TOML or YAML by its
// extension.  An empty path, or a path that does not exist, yields the
// defaults.  Environment overrides are applied in every case.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(DefaultConfig())
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(DefaultConfig())
		}
		return nil, err
	}
	defer f.Close()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return LoadTOML(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return nil, fmt.Errorf("unsupported config file extension '%s'", ext)
	}
}

// LoadTOML reads TOML configuration from r.
func LoadTOML(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding TOML config: %w", err)
	}
	return finish(cfg)
}

// LoadYAML reads YAML configuration from r.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding YAML config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.fillDatasetDefaults()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDatasetDefaults fills unset dataset fields from the default dataset.
func (c *Config) fillDatasetDefaults() {
	def := DefaultDatasetConfig()
	for name, ds := range c.Datasets {
		if name == DefaultDataset && ds.URL == "" {
			ds.URL = def.URL
		}
		if ds.CategoryField == "" {
			ds.CategoryField = def.CategoryField
		}
		if ds.ValueField == "" {
			ds.ValueField = def.ValueField
		}
		if ds.TimestampField == "" {
			ds.TimestampField = def.TimestampField
		}
		if ds.Timeout.Duration == 0 {
			ds.Timeout = def.Timeout
		}
		c.Datasets[name] = ds
	}
}

// Validate returns an error describing the first invalid setting, if any.
func (c *Config) Validate() error {
	switch {
	case c.Server.Listen == "":
		return fmt.Errorf("server.listen must be set")
	case c.Server.SessionCacheSize <= 0:
		return fmt.Errorf("server.session_cache_size must be positive")
	case c.Server.DatasetCacheSize <= 0:
		return fmt.Errorf("server.dataset_cache_size must be positive")
	case c.Selection.MinSpan < 0:
		return fmt.Errorf("selection.min_span must not be negative")
	case c.Selection.PlotWidth <= 0 || c.Selection.PlotHeight <= 0:
		return fmt.Errorf("selection.plot_width and selection.plot_height must be positive")
	}
	if _, ok := c.Datasets[DefaultDataset]; !ok {
		return fmt.Errorf("dataset '%s' must be configured", DefaultDataset)
	}
	for name, ds := range c.Datasets {
		if ds.URL == "" {
			return fmt.Errorf("dataset '%s' has no url", name)
		}
	}
	return nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COVIDVIZ_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("COVIDVIZ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COVIDVIZ_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COVIDVIZ_MIN_SPAN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Selection.MinSpan = f
		}
	}
	if v := os.Getenv("COVIDVIZ_DATASET_URL"); v != "" {
		ds, ok := cfg.Datasets[DefaultDataset]
		if !ok {
			ds = DefaultDatasetConfig()
		}
		ds.URL = v
		if cfg.Datasets == nil {
			cfg.Datasets = map[string]DatasetConfig{}
		}
		cfg.Datasets[DefaultDataset] = ds
	}
}
