package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/tablenode/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "tablenode.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "tablenode.yaml"

	// DefaultItems is the number of rows the demo starts with.
	DefaultItems = 32

	// DefaultDeleteDelay is how long a row stays marked before it is dropped.
	DefaultDeleteDelay = 2 * time.Second

	// DefaultExitDuration is the length of the row fade-out.
	DefaultExitDuration = 300 * time.Millisecond

	// DefaultInspectorAddr is the inspector's listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "tablenode"
)

// Config represents the complete tablenode configuration.
type Config struct {
	// Demo configures the table screen.
	Demo DemoConfig `json:"demo" yaml:"demo"`

	// Pool configures view recycling.
	Pool PoolConfig `json:"pool" yaml:"pool"`

	// Log configures the slog handler.
	Log LogConfig `json:"log" yaml:"log"`

	// Inspector configures the debug HTTP server.
	Inspector InspectorConfig `json:"inspector" yaml:"inspector"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DemoConfig contains the table screen settings.
type DemoConfig struct {
	// Items is the number of rows at start.
	Items int `json:"items" yaml:"items"`

	// DeleteDelay is the time between tapping DEL and the row leaving.
	DeleteDelay Duration `json:"deleteDelay" yaml:"deleteDelay"`

	// ExitDuration is the length of the fade-out of a removed row.
	// Zero removes rows without animation.
	ExitDuration Duration `json:"exitDuration" yaml:"exitDuration"`

	// Width and Height are the screen bounds in points.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// PoolConfig contains view pool settings.
type PoolConfig struct {
	// Caps limits the retired views kept per view type.
	Caps map[string]int `json:"caps,omitempty" yaml:"caps,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the listen address. Empty disables the inspector.
	Addr string `json:"addr" yaml:"addr"`

	// ClientBuffer is the number of patch batches queued per websocket
	// client before batches are dropped.
	ClientBuffer int `json:"clientBuffer" yaml:"clientBuffer"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace" yaml:"namespace"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Demo: DemoConfig{
			Items:        DefaultItems,
			DeleteDelay:  Duration(DefaultDeleteDelay),
			ExitDuration: Duration(DefaultExitDuration),
			Width:        375,
			Height:       812,
		},
		Pool: PoolConfig{
			Caps: map[string]int{
				"box":    32,
				"card":   32,
				"button": 32,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Inspector: InspectorConfig{
			Addr:         DefaultInspectorAddr,
			ClientBuffer: 16,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for tablenode.json, then tablenode.yaml.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if fileExists(jsonPath) {
		return LoadFile(jsonPath)
	}
	yamlPath := filepath.Join(dir, YAMLConfigFileName)
	if fileExists(yamlPath) {
		return LoadFile(yamlPath)
	}
	return nil, errors.New("E502").
		WithOp("config.Load").
		WithDetail("no " + ConfigFileName + " or " + YAMLConfigFileName + " in " + dir)
}

// LoadFile reads configuration from the specified file path.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E502").WithOp("config.LoadFile").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E502").
			WithOp("config.LoadFile").
			WithDetail("failed to parse " + filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads path when it is set and returns the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on its extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E502").WithOp("config.SaveTo").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E502").WithOp("config.SaveTo").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Inspector.ClientBuffer == 0 {
		c.Inspector.ClientBuffer = 16
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var problems []string
	if c.Demo.Items < 0 {
		problems = append(problems, "demo.items must not be negative")
	}
	if c.Demo.DeleteDelay < 0 {
		problems = append(problems, "demo.deleteDelay must not be negative")
	}
	if c.Demo.ExitDuration < 0 {
		problems = append(problems, "demo.exitDuration must not be negative")
	}
	if c.Demo.Width <= 0 || c.Demo.Height <= 0 {
		problems = append(problems, "demo.width and demo.height must be positive")
	}
	for typ, n := range c.Pool.Caps {
		if n < 0 {
			problems = append(problems, fmt.Sprintf("pool.caps.%s must not be negative", typ))
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Inspector.ClientBuffer <= 0 {
		problems = append(problems, "inspector.clientBuffer must be positive")
	}

	if len(problems) > 0 {
		return errors.New("E501").
			WithOp("config.Validate").
			WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q is not a valid level", l.Level)
	}
	return level, nil
}

// Exists checks if a configuration file exists in the directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName)) ||
		fileExists(filepath.Join(dir, YAMLConfigFileName))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
