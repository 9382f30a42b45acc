package engine

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/providers/anthropic"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/providers/gemini"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/providers/openai"
)

// ProviderFactory creates a Completer from a ProviderConfig.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (modeladapter.Completer, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

// apiKeyEnv names the environment variable consulted when a built-in
// provider has no api_key configured.
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories["openai"] = newOpenAI
		factories["anthropic"] = newAnthropic
		factories["gemini"] = newGemini
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before New to extend the engine with additional providers.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

// resolveAPIKey returns the configured key, falling back to the kind's
// environment variable.
func resolveAPIKey(cfg ProviderConfig) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}

	env := apiKeyEnv[cfg.Kind]
	if env != "" {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("api key is required: set provider.api_key or %s", env)
	}

	return "", fmt.Errorf("api key is required: set provider.api_key")
}

// tune applies the optional sampling overrides.
func tune(a *modeladapter.ModelAdapter, cfg ProviderConfig) {
	if cfg.Temperature != nil {
		t := *cfg.Temperature
		a.Temperature = &t
	}
	if cfg.MaxTokens > 0 {
		a.MaxTokens = cfg.MaxTokens
	}
}

func newOpenAI(_ context.Context, cfg ProviderConfig) (modeladapter.Completer, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	a := openai.New(cfg.BaseURL, key, cfg.Model)
	tune(&a.ModelAdapter, cfg)

	return a, nil
}

func newAnthropic(_ context.Context, cfg ProviderConfig) (modeladapter.Completer, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	a := anthropic.New(cfg.BaseURL, key, cfg.Model, nil)
	tune(&a.ModelAdapter, cfg)

	return a, nil
}

func newGemini(ctx context.Context, cfg ProviderConfig) (modeladapter.Completer, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	a, err := gemini.New(ctx, cfg.BaseURL, key, cfg.Model, nil)
	if err != nil {
		return nil, err
	}
	tune(&a.ModelAdapter, cfg)

	return a, nil
}

// buildCompleter creates a Completer using the registered factory for the
// config's Kind.
func buildCompleter(ctx context.Context, cfg ProviderConfig) (modeladapter.Completer, error) {
	factory, ok := getFactory(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("engine: unknown provider kind %q", cfg.Kind)
	}

	c, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: provider %q: %w", cfg.Kind, err)
	}

	return c, nil
}
