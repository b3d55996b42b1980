package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/pngicon"
)

const appName = "pngicon"

var (
	homePath       string
	configHomePath string
	stateHomePath  string
)

type Config struct {
	// Directory icons are written to and verified in
	OutDir string `yaml:"outDir,omitempty" json:"outDir,omitempty"`
	// zlib compression level of the IDAT stream (-2 to 9)
	CompressionLevel *int `yaml:"compressionLevel,omitempty" json:"compressionLevel,omitempty"`
	// Icon set to generate instead of the default one
	Icons []pngicon.Icon `yaml:"icons,omitempty" json:"icons,omitempty"`
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for config files in the following order:
// 1. $XDG_CONFIG_HOME/pngicon/config-{profile}.yml
// 2. $XDG_CONFIG_HOME/pngicon/config.yml
// If no config file is found, it returns an empty Config struct.
func Load(profile string) (*Config, error) {
	var configBasePaths []string
	if profile != "" {
		configBasePaths = append(configBasePaths, filepath.Join(configPath(), fmt.Sprintf("config-%s", profile)))
	}
	configBasePaths = append(configBasePaths, filepath.Join(configPath(), "config"))
	cfg := &Config{}
	for _, basePath := range configBasePaths {
		for _, ext := range []string{".yml", ".yaml"} {
			configPath := basePath + ext
			if b, err := os.ReadFile(configPath); err == nil {
				if err := yaml.Unmarshal(b, cfg); err != nil {
					return nil, fmt.Errorf("failed to unmarshal config: %w", err)
				}
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
				}
				return cfg, nil
			}
		}
	}
	// If no config file is found, return an empty config
	return cfg, nil
}

// Validate checks the icon set and compression level.
func (c *Config) Validate() error {
	if c.CompressionLevel != nil {
		if _, err := pngicon.New(pngicon.WithCompressionLevel(*c.CompressionLevel)); err != nil {
			return err
		}
	}
	seen := map[string]struct{}{}
	for i, icon := range c.Icons {
		if icon.Size <= 0 {
			return fmt.Errorf("icons[%d]: %w: %d", i, pngicon.ErrInvalidSize, icon.Size)
		}
		if icon.Filename == "" {
			return fmt.Errorf("icons[%d]: filename is required", i)
		}
		if strings.ContainsAny(icon.Filename, `/\`) {
			return fmt.Errorf("icons[%d]: filename must not contain path separators: %s", i, icon.Filename)
		}
		if _, ok := seen[icon.Filename]; ok {
			return fmt.Errorf("icons[%d]: duplicate filename: %s", i, icon.Filename)
		}
		seen[icon.Filename] = struct{}{}
	}
	return nil
}

// IconSet returns the configured icons, or pngicon.DefaultIcons when none are configured.
func (c *Config) IconSet() []pngicon.Icon {
	if len(c.Icons) == 0 {
		return pngicon.DefaultIcons
	}
	return c.Icons
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, appName)
	} else {
		configHomePath = filepath.Join(homePath, ".config", appName)
	}
	return configHomePath
}

func StateHomePath() string {
	if stateHomePath != "" {
		return stateHomePath
	}
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		stateHomePath = filepath.Join(v, appName)
	} else {
		stateHomePath = filepath.Join(homePath, ".local", "state", appName)
	}
	return stateHomePath
}
