package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir         string
	DBPath          string
	UserModelDir    string
	UserRulesDir    string
	ProjectModelDir string
	ProjectRulesDir string
	Settings        *Settings
}

// Settings are the user-tunable options read from config.yaml.
type Settings struct {
	HistoryLimit int  `yaml:"history_limit"`
	RulesEnabled bool `yaml:"rules_enabled"`
	SaveHistory  bool `yaml:"save_history"`
}

func DefaultSettings() *Settings {
	return &Settings{
		HistoryLimit: 20,
		RulesEnabled: true,
	}
}

func New() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dataDir := getEnv("SLICER_DATA_DIR", filepath.Join(homeDir, ".slicer"))

	c := &Config{
		DataDir:         dataDir,
		DBPath:          filepath.Join(dataDir, "slicer.db"),
		UserModelDir:    filepath.Join(dataDir, "models"),
		UserRulesDir:    filepath.Join(dataDir, "rules"),
		ProjectModelDir: filepath.Join(".slicer", "models"),
		ProjectRulesDir: filepath.Join(".slicer", "rules"),
	}

	settings, err := LoadSettings([]string{
		filepath.Join(".slicer", "config.yaml"),
		filepath.Join(dataDir, "config.yaml"),
	})
	if err != nil {
		return nil, err
	}
	c.Settings = settings

	return c, nil
}

// LoadSettings reads the first settings file that exists. Missing files
// yield the defaults; keys absent from the file keep their default value.
func LoadSettings(paths []string) (*Settings, error) {
	settings := DefaultSettings()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if settings.HistoryLimit <= 0 {
			settings.HistoryLimit = DefaultSettings().HistoryLimit
		}
		return settings, nil
	}
	return settings, nil
}

func (c *Config) EnsureDataDir() error {
	for _, dir := range []string{c.DataDir, c.UserModelDir, c.UserRulesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ModelDirs lists document directories, project first.
func (c *Config) ModelDirs() []string {
	return []string{c.ProjectModelDir, c.UserModelDir}
}

// RulesDirs lists rule script directories, project first.
func (c *Config) RulesDirs() []string {
	return []string{c.ProjectRulesDir, c.UserRulesDir}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
