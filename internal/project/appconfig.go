package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/piwi3910/runaround/internal/model"
)

// ConfigDirEnv overrides the config directory, mostly for tests and
// portable installs.
const ConfigDirEnv = "RUNAROUND_CONFIG_DIR"

// DefaultConfigDir is $RUNAROUND_CONFIG_DIR, or ~/.runaround when unset.
func DefaultConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".runaround")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes config as indented JSON, creating parent directories.
func SaveAppConfig(path string, config model.AppConfig) error {
	data, err := json.MarshalIndent(sanitizeConfig(config), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LoadAppConfig reads the config at path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	return sanitizeConfig(config), nil
}

// sanitizeConfig replaces values a hand-edited file might get wrong.
func sanitizeConfig(c model.AppConfig) model.AppConfig {
	def := model.DefaultAppConfig()
	if c.RecentProjects == nil {
		c.RecentProjects = []string{}
	}
	if c.AutoSaveInterval < 0 {
		c.AutoSaveInterval = 0
	}
	if c.RecomputeDebounce < 0 {
		c.RecomputeDebounce = def.RecomputeDebounce
	}
	switch c.Theme {
	case "light", "dark", "system":
	default:
		c.Theme = def.Theme
	}
	return c
}
