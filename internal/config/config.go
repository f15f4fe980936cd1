package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFormat      = "json"
	DefaultIndent      = 4
	DefaultTheme       = "cyberpunk"
	DefaultExpandDepth = 1
	DefaultLogLevel    = "info"
	DefaultDataDir     = ".checktree"
)

type Config struct {
	Export  ExportConfig `yaml:"export"`
	View    ViewConfig   `yaml:"view"`
	Log     LogConfig    `yaml:"log"`
	DataDir string       `yaml:"data_dir"`
}

type ExportConfig struct {
	Format          string `yaml:"format"`
	Indent          int    `yaml:"indent"`
	ArraysAsObjects bool   `yaml:"arrays_as_objects"`
}

type ViewConfig struct {
	Theme       string `yaml:"theme"`
	ExpandDepth int    `yaml:"expand_depth"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			Format: DefaultFormat,
			Indent: DefaultIndent,
		},
		View: ViewConfig{
			Theme:       DefaultTheme,
			ExpandDepth: DefaultExpandDepth,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML config file. Fields missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads the file at path on top of base. Settings the file leaves
// out keep base's values. base is modified and returned.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.Export.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("config: export format must be json or yaml, got %q", c.Export.Format)
	}
	if c.Export.Indent < 0 || c.Export.Indent > 16 {
		return fmt.Errorf("config: export indent out of range: %d", c.Export.Indent)
	}
	if c.View.ExpandDepth < 0 {
		return fmt.Errorf("config: expand depth must not be negative: %d", c.View.ExpandDepth)
	}
	return nil
}
