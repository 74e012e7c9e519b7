package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Jobs       JobsConfig       `toml:"jobs"`
	Memory     MemoryConfig     `toml:"memory"`
	Simulation SimulationConfig `toml:"simulation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type JobsConfig struct {
	Workers int `toml:"workers"` // 0 = hardware parallelism minus one
}

type MemoryConfig struct {
	TlsfSplitShift uint32 `toml:"tlsf_split_shift"` // second-level granularity
	TlsfBufferKiB  int    `toml:"tlsf_buffer_kib"`
	ArenaBlock     int    `toml:"arena_block"`
}

type SimulationConfig struct {
	Scenario    string        `toml:"scenario"`
	Steps       int           `toml:"steps"`
	StepTime    time.Duration `toml:"step_time"`
	WorldWidth  float64       `toml:"world_width"`
	WorldHeight float64       `toml:"world_height"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Jobs: JobsConfig{
			Workers: 0,
		},
		Memory: MemoryConfig{
			TlsfSplitShift: 4,
			TlsfBufferKiB:  1024,
			ArenaBlock:     256,
		},
		Simulation: SimulationConfig{
			Scenario:    "scenario.yaml",
			Steps:       300,
			StepTime:    16 * time.Millisecond,
			WorldWidth:  1920,
			WorldHeight: 1080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Jobs.Workers < 0 {
		return fmt.Errorf("jobs.workers must be >= 0, got %d", c.Jobs.Workers)
	}
	if c.Memory.TlsfSplitShift == 0 || c.Memory.TlsfSplitShift > 16 {
		return fmt.Errorf("memory.tlsf_split_shift must be in [1,16], got %d", c.Memory.TlsfSplitShift)
	}
	if c.Memory.TlsfBufferKiB <= 0 {
		return fmt.Errorf("memory.tlsf_buffer_kib must be positive, got %d", c.Memory.TlsfBufferKiB)
	}
	if c.Simulation.Steps <= 0 {
		return fmt.Errorf("simulation.steps must be positive, got %d", c.Simulation.Steps)
	}
	return nil
}
