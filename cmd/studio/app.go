package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/engine"
)

const (
	appName    = "studio"
	serverName = "creative-content-studio"
	version    = "0.1.0"

	// defaultConfigFile is read when --config is not given and it exists.
	defaultConfigFile = "studio.yaml"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    appName,
		Usage:   "Creative content studio: an AI agent driving media tools over MCP",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file (default: studio.yaml when present)",
				Sources: cli.EnvVars("STUDIO_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to .env file (ignored if missing)",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "tool deployment: local or remote",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "model provider: openai, anthropic or gemini",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "model identifier (default depends on the provider)",
			},
			&cli.IntFlag{
				Name:  "max-iterations",
				Usage: "model round-trips per query (0 keeps the configured value)",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "directory for generated assets",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, loadDotEnv(cmd.String("env"))
		},
		Commands: []*cli.Command{
			chatCommand(),
			askCommand(),
			toolsCommand(),
			serveCommand(),
			initCommand(),
		},
		Action: runChat,
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// newLogger returns a text logger on w. Only warnings and errors are shown
// unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveConfigPath returns the explicit path, or studio.yaml when it exists,
// or "" to use the built-in defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}

	return ""
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig(cmd *cli.Command) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	if path := resolveConfigPath(cmd.String("config")); path != "" {
		loaded, err := engine.LoadConfig(path)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = loaded
	}

	applyOverrides(&cfg, cmd)
	cfg.Logger = newLogger(errWriter(cmd), cmd.Bool("verbose"))

	return cfg, nil
}

func applyOverrides(cfg *engine.Config, cmd *cli.Command) {
	if v := cmd.String("mode"); v != "" {
		cfg.Mode = v
	}
	if v := cmd.String("provider"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := cmd.String("model"); v != "" {
		cfg.Provider.Model = v
	}
	if n := cmd.Int("max-iterations"); n > 0 {
		cfg.Agent.MaxIterations = int(n)
	}
	if v := cmd.String("output-dir"); v != "" {
		cfg.OutputDir = v
	}
}

// openEngine builds an engine from the command's configuration. The caller
// must Close it.
func openEngine(ctx context.Context, cmd *cli.Command) (*engine.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return engine.New(ctx, cfg)
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}

	return os.Stdin
}
