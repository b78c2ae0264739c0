package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yukikurage/isp-kanban/internal/models"
)

const defaultClientConfigFile = "kanban.yaml"

// ClientConfig configures the board client
type ClientConfig struct {
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
	// LogFile receives the client's logs; the terminal belongs to the board
	LogFile string `yaml:"log_file"`
	// Stages is "full" for the drag-and-drop board or "buttons" for the
	// three-column board without Stand-by
	Stages string `yaml:"stages"`
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:   "http://127.0.0.1:8000",
		Timeout:  10 * time.Second,
		LogLevel: "info",
		LogFile:  "kanban.log",
		Stages:   "full",
	}
}

// LoadClient reads the YAML file at path, or at KANBAN_CONFIG, or ./kanban.yaml,
// then applies environment overrides. A missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := defaultClientConfig()

	if path == "" {
		path = getEnv("KANBAN_CONFIG", defaultClientConfigFile)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.APIURL = getEnv("KANBAN_API_URL", cfg.APIURL)
	cfg.LogLevel = getEnv("KANBAN_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("KANBAN_LOG_FILE", cfg.LogFile)
	cfg.Stages = getEnv("KANBAN_STAGES", cfg.Stages)
	if v := os.Getenv("KANBAN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KANBAN_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// StageOrder returns the board columns selected by Stages
func (c *ClientConfig) StageOrder() []models.TaskStatus {
	if c.Stages == "buttons" {
		return models.ButtonStages
	}
	return models.Stages
}

func (c *ClientConfig) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Stages != "full" && c.Stages != "buttons" {
		return fmt.Errorf("stages must be full or buttons, got %q", c.Stages)
	}
	if c.LogFile == "" {
		return errors.New("log_file must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}
