package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend identifies one OpenAI-compatible chat-completions endpoint
type Backend struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// ServerConfig holds the tool provider's serve address
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// Config represents the complete configuration for both processes.
// Lingshu is the provider's vision-language backend; LLM is the
// agent's reasoning-model backend.
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Lingshu Backend      `yaml:"lingshu"`
	LLM     Backend      `yaml:"llm"`
}

// Defaults mirroring the reference deployment
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 4200
	DefaultPath = "/lingshu"

	DefaultBackendURL   = "http://localhost:8000/v1"
	DefaultAPIKey       = "api_key"
	DefaultLingshuModel = "Lingshu-7B"
	DefaultLLMModel     = "qwen3-235b-a22b-instruct-2507"
)

// Load reads and parses the YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.expand()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations,
// then applies environment overrides and built-in defaults.
// Checks: ./lingshu.yaml, ./configs/lingshu.yaml, ~/.config/lingshu/lingshu.yaml,
// /etc/lingshu/lingshu.yaml. A missing file is not an error.
func LoadWithDefaults() (*Config, error) {
	locations := []string{
		"./lingshu.yaml",
		"./configs/lingshu.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "lingshu", "lingshu.yaml"))
	}

	locations = append(locations, "/etc/lingshu/lingshu.yaml")

	cfg := &Config{}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			loaded, err := Load(loc)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides backend settings from the environment.
// Environment variables always win over YAML values.
func (c *Config) ApplyEnv() {
	applyBackendEnv(&c.Lingshu, "LINGSHU_SERVER_URL", "LINGSHU_SERVER_API", "LINGSHU_MODEL")
	applyBackendEnv(&c.LLM, "LLM_SERVER_URL", "LLM_SERVER_API", "LLM_MODEL")
}

func applyBackendEnv(b *Backend, urlVar, keyVar, modelVar string) {
	if v := os.Getenv(urlVar); v != "" {
		b.BaseURL = v
	}
	if v := os.Getenv(keyVar); v != "" {
		b.APIKey = v
	}
	if v := os.Getenv(modelVar); v != "" {
		b.Model = v
	}
}

// ApplyDefaults fills any setting still unset after YAML and env
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}

	applyBackendDefaults(&c.Lingshu, DefaultLingshuModel)
	applyBackendDefaults(&c.LLM, DefaultLLMModel)
}

func applyBackendDefaults(b *Backend, model string) {
	if b.BaseURL == "" {
		b.BaseURL = DefaultBackendURL
	}
	if b.APIKey == "" {
		b.APIKey = DefaultAPIKey
	}
	if b.Model == "" {
		b.Model = model
	}
}

// expand resolves ${VAR} references in string values
func (c *Config) expand() {
	c.Lingshu.BaseURL = ExpandEnv(c.Lingshu.BaseURL)
	c.Lingshu.APIKey = ExpandEnv(c.Lingshu.APIKey)
	c.LLM.BaseURL = ExpandEnv(c.LLM.BaseURL)
	c.LLM.APIKey = ExpandEnv(c.LLM.APIKey)
}

// Validate checks config correctness
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.Path != "" && !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server path %q must start with /", c.Server.Path)
	}
	return nil
}

// MCPURL returns the full streamable HTTP endpoint for the configured server
func (c *Config) MCPURL() string {
	return fmt.Sprintf("http://%s:%d%s", c.Server.Host, c.Server.Port, c.Server.Path)
}
