// Package config loads the YAML settings of the kansoku tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edwinsyarief/kansoku"
)

// maxWorkers bounds Workers. The transform copy never profits from more
// goroutines than that.
const maxWorkers = 256

// Config is the top-level configuration file.
type Config struct {
	InitialCapacity    int           `yaml:"initial_capacity"`
	Workers            int           `yaml:"workers"`
	RenderingLayerMask uint32        `yaml:"rendering_layer_mask"`
	Capture            CaptureConfig `yaml:"capture"`
	Metrics            MetricsConfig `yaml:"metrics"`
}

// CaptureConfig selects where flushed frames are recorded. An empty Path
// disables recording.
type CaptureConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := kansoku.DefaultOptions()
	return Config{
		InitialCapacity:    opts.InitialCapacity,
		Workers:            opts.Workers,
		RenderingLayerMask: opts.RenderingLayerMask,
		Metrics:            MetricsConfig{Addr: ":9100"},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.InitialCapacity < 0:
		return fmt.Errorf("initial_capacity must not be negative, got %d", c.InitialCapacity)
	case c.Workers < 1 || c.Workers > maxWorkers:
		return fmt.Errorf("workers must be in [1, %d], got %d", maxWorkers, c.Workers)
	case c.RenderingLayerMask == 0:
		return errors.New("rendering_layer_mask must select at least one layer")
	case c.Metrics.Enabled && c.Metrics.Addr == "":
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	return nil
}

// Options returns the tracker options described by c.
func (c *Config) Options() kansoku.Options {
	return kansoku.Options{
		InitialCapacity:    c.InitialCapacity,
		Workers:            c.Workers,
		RenderingLayerMask: c.RenderingLayerMask,
	}
}
