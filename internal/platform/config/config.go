// Package config loads the YAML tuning document shared by the world server
// and the character processes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the system. Zero values are filled in by
// Default; a missing file is not an error.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Sim    SimConfig    `yaml:"sim"`

	// Plots seeds the spatial map. Empty means the built-in village layout.
	Plots []PlotConfig `yaml:"plots"`
}

type ServerConfig struct {
	Listen           string `yaml:"listen"`
	DataDir          string `yaml:"data_dir"`
	LogFile          string `yaml:"log_file"`
	StateFile        string `yaml:"state_file"`
	HeartbeatWindowS int    `yaml:"heartbeat_window_s"`
	BackupIntervalS  int    `yaml:"backup_interval_s"`
}

type ClientConfig struct {
	ServerURL      string `yaml:"server_url"`
	ConnectRetries int    `yaml:"connect_retries"`
	BackoffBaseMs  int    `yaml:"backoff_base_ms"`
	ReadTimeoutS   int    `yaml:"read_timeout_s"`
}

type SimConfig struct {
	TickIntervalS float64 `yaml:"tick_interval_s"`
	HoursPerTick  float64 `yaml:"hours_per_tick"`
	CatalogPath   string  `yaml:"catalog_path"`
}

type PlotConfig struct {
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Kind  string `yaml:"kind"` // "house", "market", "empty"
	Owner string `yaml:"owner,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:           ":6000",
			DataDir:          "data",
			LogFile:          "",
			StateFile:        "data/world_state.json",
			HeartbeatWindowS: 30,
			BackupIntervalS:  300,
		},
		Client: ClientConfig{
			ServerURL:      "ws://localhost:6000/sync",
			ConnectRetries: 3,
			BackoffBaseMs:  1000,
			ReadTimeoutS:   10,
		},
		Sim: SimConfig{
			TickIntervalS: 1.0,
			HoursPerTick:  0.05,
			CatalogPath:   "",
		},
	}
}

// Load reads the YAML config at path, filling unset fields from Default.
// A missing file returns Default with no error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = def.Server.DataDir
	}
	if c.Server.StateFile == "" {
		c.Server.StateFile = def.Server.StateFile
	}
	if c.Server.HeartbeatWindowS <= 0 {
		c.Server.HeartbeatWindowS = def.Server.HeartbeatWindowS
	}
	if c.Server.BackupIntervalS <= 0 {
		c.Server.BackupIntervalS = def.Server.BackupIntervalS
	}
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = def.Client.ServerURL
	}
	if c.Client.ConnectRetries <= 0 {
		c.Client.ConnectRetries = def.Client.ConnectRetries
	}
	if c.Client.BackoffBaseMs <= 0 {
		c.Client.BackoffBaseMs = def.Client.BackoffBaseMs
	}
	if c.Client.ReadTimeoutS <= 0 {
		c.Client.ReadTimeoutS = def.Client.ReadTimeoutS
	}
	if c.Sim.TickIntervalS <= 0 {
		c.Sim.TickIntervalS = def.Sim.TickIntervalS
	}
	if c.Sim.HoursPerTick <= 0 {
		c.Sim.HoursPerTick = def.Sim.HoursPerTick
	}
}
