package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/mosaic/internal/project"
)

const envMosaicConfig = "MOSAIC_CONFIG"

// Config represents the mosaic configuration file (~/.config/mosaic/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Backend   string `yaml:"backend"`
	TileSizeX *int64 `yaml:"tile_size_x"`
	TileSizeY *int64 `yaml:"tile_size_y"`
	TileSizeZ *int64 `yaml:"tile_size_z"`
	Workers   *int64 `yaml:"workers"`
	Fallback  *bool  `yaml:"fallback"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	if p := os.Getenv(envMosaicConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mosaic", "config.yaml")
}

// applyComputeConfig fills compute settings the user did not pass on the
// command line. A manifest value beats the config file; flags beat both.
func applyComputeConfig(c *cli.Command, cfg Config, m *project.Manifest) {
	if !c.IsSet("backend") {
		switch {
		case m != nil && m.Backend != "":
			backendName = m.Backend
		case cfg.Backend != "":
			backendName = cfg.Backend
		}
	}
	var mt struct{ X, Y, Z int }
	if m != nil {
		mt.X, mt.Y, mt.Z = m.Tiles.X, m.Tiles.Y, m.Tiles.Z
	}
	applyTile(c, "tile-size-x", &tileSizeX, mt.X, cfg.TileSizeX)
	applyTile(c, "tile-size-y", &tileSizeY, mt.Y, cfg.TileSizeY)
	applyTile(c, "tile-size-z", &tileSizeZ, mt.Z, cfg.TileSizeZ)
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.Fallback != nil && !c.IsSet("no-fallback") {
		noFallback = !*cfg.Fallback
	}
}

func applyTile(c *cli.Command, flag string, dst *int64, manifest int, cfg *int64) {
	if c.IsSet(flag) {
		return
	}
	switch {
	case manifest != 0:
		*dst = int64(manifest)
	case cfg != nil:
		*dst = *cfg
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyComputeConfig(c, cfg, nil)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
