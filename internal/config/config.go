package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/internal/logging"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vpatch.json"

	// DefaultAddr is the default listen address of vpatch serve.
	DefaultAddr = ":8080"

	// DefaultWSPath is the default websocket endpoint.
	DefaultWSPath = "/ws"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vpatch"
)

// Host adapter names.
const (
	HostHTML = "html"
	HostMem  = "mem"
)

// Modules lists the module names accepted in the modules field.
var Modules = []string{"attributes", "class", "style", "metrics", "tracing"}

// Config represents the complete vpatch.json configuration.
type Config struct {
	// Validate enables tree validation before every cycle.
	Validate bool `json:"validate"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// Host selects the host adapter: "html" or "mem".
	Host string `json:"host,omitempty"`

	// Modules are the modules registered with the patcher, in order.
	Modules []string `json:"modules,omitempty"`

	// Serve contains settings of vpatch serve.
	Serve ServeConfig `json:"serve,omitempty"`

	// Metrics contains Prometheus naming settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains HTTP server settings.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// WSPath is the path of the op stream endpoint.
	WSPath string `json:"wsPath,omitempty"`

	// MetricsPath is the path of the Prometheus endpoint.
	MetricsPath string `json:"metricsPath,omitempty"`
}

// MetricsConfig contains Prometheus naming settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// Default creates a Config with default values.
func Default() *Config {
	return &Config{
		Validate: true,
		LogLevel: "info",
		Host:     HostHTML,
		Modules:  []string{"attributes", "class", "style"},
		Serve: ServeConfig{
			Addr:        DefaultAddr,
			WSPath:      DefaultWSPath,
			MetricsPath: DefaultMetricsPath,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads vpatch.json from dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. Fields absent
// from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").WithPath(path).Wrap(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithPath(path).
			WithDetail("Failed to parse vpatch.json: " + err.Error()).
			WithSuggestion("Check that vpatch.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for fields emptied by the file.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Host == "" {
		c.Host = HostHTML
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
	if c.Serve.WSPath == "" {
		c.Serve.WSPath = DefaultWSPath
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Host != HostHTML && c.Host != HostMem {
		return errors.New("E121").
			WithPath("host").
			WithDetail(`Got "` + c.Host + `"; the host adapter must be "html" or "mem".`)
	}
	for _, m := range c.Modules {
		if !slices.Contains(Modules, m) {
			return errors.New("E122").
				WithPath("modules").
				WithSuggestion(`Remove "` + m + `" from the modules list`)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.New("E123").WithPath("logLevel").Wrap(err)
	}
	return nil
}

// HasModule reports whether the module name is enabled.
func (c *Config) HasModule(name string) bool {
	return slices.Contains(c.Modules, name)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
