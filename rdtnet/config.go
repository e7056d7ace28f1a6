package rdtnet

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rdtlab/rdt/rdt"
)

// DemoConfig is the on-disk configuration for the cmd/rdtpipe demo
// binary: connection tuning plus the simulated network impairments
// LossyNetwork applies, loaded from a YAML sidecar file.
type DemoConfig struct {
	Listen string `yaml:"listen"`
	Peer   string `yaml:"peer"`

	SendWindowBytes int           `yaml:"send_window_bytes"`
	RecvWindowBytes int           `yaml:"recv_window_bytes"`
	RTTimeout       time.Duration `yaml:"rt_timeout"`
	TickPeriod      time.Duration `yaml:"tick_period"`

	Lossy LossyDemoConfig `yaml:"lossy"`
}

// LossyDemoConfig is the YAML shape of LossyConfig.
type LossyDemoConfig struct {
	RatePerSecond        float64 `yaml:"rate_per_second"`
	Burst                int     `yaml:"burst"`
	DropProbability      float64 `yaml:"drop_probability"`
	DuplicateProbability float64 `yaml:"duplicate_probability"`
	ReorderProbability   float64 `yaml:"reorder_probability"`
	Seed                 int64   `yaml:"seed"`
}

// LoadDemoConfig reads and parses a YAML config file at path.
func LoadDemoConfig(path string) (DemoConfig, error) {
	var cfg DemoConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("rdtnet: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("rdtnet: parse config: %w", err)
	}
	return cfg, nil
}

// ConnConfig translates the demo config into an rdt.Config, leaving
// zero-valued fields to rdt.Init's own defaulting.
func (c DemoConfig) ConnConfig() rdt.Config {
	return rdt.Config{
		SendWindow: rdt.Size(c.SendWindowBytes),
		RecvWindow: rdt.Size(c.RecvWindowBytes),
		RTTimeout:  c.RTTimeout,
		TickPeriod: c.TickPeriod,
	}
}

// LossyConfig translates the demo config's lossy section.
func (c DemoConfig) LossyConfig() LossyConfig {
	return LossyConfig{
		RatePerSecond:        c.Lossy.RatePerSecond,
		Burst:                c.Lossy.Burst,
		DropProbability:      c.Lossy.DropProbability,
		DuplicateProbability: c.Lossy.DuplicateProbability,
		ReorderProbability:   c.Lossy.ReorderProbability,
		Seed:                 c.Lossy.Seed,
	}
}
