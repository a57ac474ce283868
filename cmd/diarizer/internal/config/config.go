// Package config loads the diarizer CLI configuration.
//
// Configuration is a single YAML file under os.UserConfigDir()/diarizer/:
//
//	~/Library/Application Support/diarizer/config.yaml   (macOS)
//	~/.config/diarizer/config.yaml                       (Linux)
//	%AppData%/diarizer/config.yaml                       (Windows)
//
// A missing file yields the defaults; the speaker registry database
// lives next to it unless data_dir points elsewhere.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "diarizer"

	configFile = "config.yaml"
)

// Config is the root CLI configuration.
type Config struct {
	// Dir is the configuration directory. Not serialized.
	Dir string `yaml:"-"`

	// DataDir holds the speaker registry database.
	// Defaults to "<config dir>/db".
	DataDir string `yaml:"data_dir,omitempty"`

	Engine  Engine  `yaml:"engine,omitempty"`
	Storage Storage `yaml:"storage,omitempty"`
}

// Engine overrides analysis parameters. Zero fields keep the engine
// defaults.
type Engine struct {
	WindowSeconds  float64 `yaml:"window_seconds,omitempty"`
	MaxSpeakers    int     `yaml:"max_speakers,omitempty"`
	MatchThreshold float64 `yaml:"match_threshold,omitempty"`
	CacheSize      int     `yaml:"cache_size,omitempty"`
}

// Storage selects where recordings are read from.
type Storage struct {
	// Backend is "local" (default) or "s3".
	Backend string `yaml:"backend,omitempty"`

	// Root is the local backend's base directory. Defaults to "/",
	// so recording paths are plain filesystem paths.
	Root string `yaml:"root,omitempty"`

	// S3 backend settings. Endpoint and the static keys are optional;
	// without keys the ambient AWS credential chain is used.
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// Load reads the configuration from the default location.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir))
}

// LoadFrom reads the configuration from a specific directory.
// A missing config file is not an error; defaults apply.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, configFile), err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.Dir, "db")
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "/"
	}
}

// Save writes the configuration file, creating the directory as needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.Dir, configFile), data, 0644)
}

// Path returns the config file location.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, configFile)
}
