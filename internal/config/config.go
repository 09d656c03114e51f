package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root     string   `yaml:"root"`
		Language string   `yaml:"language"`
		Include  []string `yaml:"include"` // doublestar globs, relative to root
		Exclude  []string `yaml:"exclude"`
		Manifest string   `yaml:"manifest"` // optional YAML declaration manifest
	} `yaml:"project"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Resolve struct {
		Workers             int  `yaml:"workers"`
		PreferOwn           bool `yaml:"prefer_own"`
		IncludeUndocumented bool `yaml:"include_undocumented"`
	} `yaml:"resolve"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.Language = "csharp"
	cfg.Project.Include = []string{"**/*.cs"}
	cfg.Storage.DBPath = "inheritdoc.db"
	cfg.Resolve.Workers = 4
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("INHERITDOC_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if db := os.Getenv("INHERITDOC_DB"); db != "" {
		cfg.Storage.DBPath = db
	}
	if workers := os.Getenv("INHERITDOC_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return nil, fmt.Errorf("invalid INHERITDOC_WORKERS %q: %w", workers, err)
		}
		cfg.Resolve.Workers = n
	}

	if cfg.Resolve.Workers < 1 {
		cfg.Resolve.Workers = 1
	}
	if len(cfg.Project.Include) == 0 {
		cfg.Project.Include = Default().Project.Include
	}

	return cfg, nil
}
