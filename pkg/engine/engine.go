package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/agent"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/studio"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/mcpclient"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// Engine is the composition root that assembles the completer, the tool
// registry and the agent from configuration.
type Engine struct {
	cfg       Config
	log       *slog.Logger
	events    *EventBus
	completer modeladapter.Completer
	client    *mcpclient.MCPClient
	agent     *agent.Agent
}

// New creates an Engine from the given configuration. It validates the
// config, builds the provider adapter and, in remote mode, connects to the
// MCP server and discovers its tools.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		log:    cfg.Logger,
		events: NewEventBus(),
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	completer, err := buildCompleter(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}
	e.completer = completer

	reg, client, err := openRegistry(ctx, cfg, e.log)
	if err != nil {
		return nil, err
	}
	e.client = client

	name := cfg.Agent.Name
	if name == "" {
		name = "studio"
	}

	mw := []agent.Middleware{agent.Recovery(), agent.Logger(e.log, name)}
	if cfg.Agent.Timeout > 0 {
		mw = append(mw, agent.Timeout(cfg.Agent.Timeout))
	}

	instructions := cfg.Agent.Instructions
	if client != nil && client.Instructions() != "" {
		instructions = strings.TrimSpace(instructions + "\n\n" + client.Instructions())
	}

	e.agent = agent.New(completer, observedRegistry{Registry: reg, events: e.events, agent: name}, agent.Options{
		Name:          name,
		Instructions:  instructions,
		MaxIterations: cfg.Agent.MaxIterations,
		Logger:        e.log,
		Middleware:    mw,
	})

	e.log.Debug("engine ready", "mode", cfg.Mode, "provider", cfg.Provider.Kind, "tools", len(reg.Tools()))

	return e, nil
}

// openRegistry builds the tool registry for cfg.Mode. The client is non-nil
// in remote mode and must be closed by the caller.
func openRegistry(ctx context.Context, cfg Config, log *slog.Logger) (toolbox.Registry, *mcpclient.MCPClient, error) {
	if cfg.Mode == ModeLocal {
		return studio.Tools(cfg.OutputDir, studio.WithLogger(log)), nil, nil
	}

	var (
		client *mcpclient.MCPClient
		err    error
	)
	if cfg.MCP.URL != "" {
		client, err = mcpclient.NewSSE(ctx, cfg.MCP.URL)
	} else {
		command, args, cmdErr := remoteCommand(cfg)
		if cmdErr != nil {
			return nil, nil, cmdErr
		}
		log.Debug("starting tool server", "command", command, "args", args)
		client, err = mcpclient.New(ctx, command, args...)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("engine: mcp: %w", err)
	}

	name, version := client.Server()
	log.Debug("connected to tool server", "server", name, "version", version, "tools", len(client.Tools()))

	return client, client, nil
}

// remoteCommand returns the configured server command, or this executable
// with the serve subcommand.
func remoteCommand(cfg Config) (string, []string, error) {
	if cfg.MCP.Command != "" {
		return cfg.MCP.Command, cfg.MCP.Args, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("engine: mcp: locate executable: %w", err)
	}

	var args []string
	if cfg.OutputDir != "" {
		args = append(args, "--output-dir", cfg.OutputDir)
	}

	return self, append(args, "serve"), nil
}

// Catalog returns the tools cfg would offer the model without building a
// provider, so it needs no credentials.
func Catalog(ctx context.Context, cfg Config) ([]toolbox.Tool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	reg, client, err := openRegistry(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	return reg.Tools(), nil
}

// Ask answers query within budget model round-trips. A budget of zero or
// less uses the configured default.
func (e *Engine) Ask(ctx context.Context, query string, budget int) agent.Result {
	name := e.agent.Name()

	e.events.Publish(Event{Kind: EventQueryStart, Agent: name, Timestamp: time.Now(), Data: query})

	res := e.agent.Query(ctx, query, budget)
	if res.Err != nil {
		e.events.Publish(Event{Kind: EventError, Agent: name, Timestamp: time.Now(), Data: res.Err})
	}

	e.events.Publish(Event{Kind: EventQueryEnd, Agent: name, Timestamp: time.Now(), Data: res})

	return res
}

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// Agent returns the configured agent.
func (e *Engine) Agent() *agent.Agent { return e.agent }

// Mode returns the deployment mode.
func (e *Engine) Mode() string { return e.cfg.Mode }

// Tools returns the catalog offered to the model.
func (e *Engine) Tools() []toolbox.Tool { return e.agent.Tools() }

// Usage returns the accumulated token usage. The bool is false when the
// completer does not track usage.
func (e *Engine) Usage() (usage.TokenCount, bool) {
	ur, ok := e.completer.(modeladapter.UsageReporter)
	if !ok {
		return usage.TokenCount{}, false
	}

	return ur.UsageTracker().Total(), true
}

// RateLimit returns the provider's most recent rate limit headers, or nil
// when the provider sends none.
func (e *Engine) RateLimit() *modeladapter.RateLimitInfo {
	r, ok := e.completer.(modeladapter.RateLimitInfoReporter)
	if !ok {
		return nil
	}

	return r.LastRateLimitInfo()
}

// Close shuts down the MCP client, if any.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}

	return e.client.Close()
}
