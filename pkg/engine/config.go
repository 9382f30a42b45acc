package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/agent"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/studio"
)

// Deployment modes.
const (
	// ModeLocal registers the studio tools in-process.
	ModeLocal = "local"
	// ModeRemote discovers the tools from an MCP server.
	ModeRemote = "remote"
)

// Config is the top-level engine configuration.
type Config struct {
	Provider  ProviderConfig `yaml:"provider"`
	Mode      string         `yaml:"mode"`
	MCP       MCPConfig      `yaml:"mcp,omitempty"`
	Agent     AgentConfig    `yaml:"agent"`
	OutputDir string         `yaml:"output_dir"`
	Logger    *slog.Logger   `yaml:"-"` // Set by CLI, not from YAML.
}

// ProviderConfig describes the LLM provider.
type ProviderConfig struct {
	Kind        string   `yaml:"kind"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	APIKey      string   `yaml:"api_key,omitempty"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"` // Nil keeps the provider default.
	MaxTokens   int      `yaml:"max_tokens,omitempty"`  // Zero keeps the provider default.
}

// MCPConfig describes the remote tool server. Command and URL are exclusive;
// with neither set the engine spawns its own executable with "serve".
type MCPConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	URL     string   `yaml:"url,omitempty"`
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	Name          string        `yaml:"name"`
	Instructions  string        `yaml:"instructions,omitempty"`
	MaxIterations int           `yaml:"max_iterations"`
	Timeout       time.Duration `yaml:"timeout,omitempty"` // Zero disables the per-query deadline.
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderConfig{Kind: "openai"},
		Mode:      ModeLocal,
		Agent:     AgentConfig{Name: "studio", MaxIterations: agent.DefaultMaxIterations},
		OutputDir: studio.DefaultOutputDir,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing so API keys can
// stay in the environment (e.g. loaded from a .env file).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Provider.Kind == "" {
		return fmt.Errorf("engine: config: provider kind is required")
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("engine: config: provider max_tokens must not be negative")
	}

	switch c.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("engine: config: unknown mode %q (want %q or %q)", c.Mode, ModeLocal, ModeRemote)
	}

	if c.MCP.Command != "" && c.MCP.URL != "" {
		return fmt.Errorf("engine: config: mcp command and url are mutually exclusive")
	}

	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("engine: config: agent max_iterations must not be negative")
	}
	if c.Agent.Timeout < 0 {
		return fmt.Errorf("engine: config: agent timeout must not be negative")
	}

	return nil
}
