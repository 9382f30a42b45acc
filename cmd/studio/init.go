package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/engine"
)

// providerDefaults seeds the wizard per provider kind.
//
//nolint:gosec // env var reference templates, not hardcoded secrets
var providerDefaults = map[string]struct {
	APIKey string
	Model  string
}{
	"openai":    {APIKey: "${OPENAI_API_KEY}", Model: "gpt-4o-mini"},
	"anthropic": {APIKey: "${ANTHROPIC_API_KEY}", Model: "claude-sonnet-4-20250514"},
	"gemini":    {APIKey: "${GEMINI_API_KEY}", Model: "gemini-2.5-flash"},
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a configuration file interactively",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing configuration file"},
		},
		Action: runInit,
	}
}

func runInit(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigFile
	}

	if !cmd.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("init: %s already exists (use --force to overwrite)", path)
		}
	}

	cfg, err := runWizard(engine.DefaultConfig())
	if err != nil {
		return err
	}

	if err := writeConfig(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(writer(cmd), "Wrote %s\n", path)

	return nil
}

// runWizard prompts for the settings most users change, starting from cfg.
func runWizard(cfg engine.Config) (engine.Config, error) {
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider").
			Options(
				huh.NewOption("OpenAI", "openai"),
				huh.NewOption("Anthropic", "anthropic"),
				huh.NewOption("Gemini", "gemini"),
			).
			Value(&cfg.Provider.Kind),
	)).Run(); err != nil {
		return cfg, err
	}

	defaults := providerDefaults[cfg.Provider.Kind]
	cfg.Provider.APIKey = defaults.APIKey
	cfg.Provider.Model = defaults.Model

	iterations := strconv.Itoa(cfg.Agent.MaxIterations)

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("API key env var").Value(&cfg.Provider.APIKey),
		huh.NewInput().Title("Model").Value(&cfg.Provider.Model),
		huh.NewSelect[string]().
			Title("Tool deployment").
			Options(
				huh.NewOption("Local (tools run in-process)", engine.ModeLocal),
				huh.NewOption("Remote (tools behind an MCP server)", engine.ModeRemote),
			).
			Value(&cfg.Mode),
		huh.NewInput().Title("Output directory").Value(&cfg.OutputDir).Validate(validateNonEmpty),
		huh.NewInput().Title("Max iterations per query").Value(&iterations).Validate(validatePositiveInt),
	)).Run(); err != nil {
		return cfg, err
	}

	cfg.Agent.MaxIterations, _ = strconv.Atoi(iterations)

	if cfg.Mode == engine.ModeRemote {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("MCP server URL (empty spawns `studio serve`)").
				Value(&cfg.MCP.URL),
		)).Run(); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

// writeConfig marshals cfg to path, creating parent directories.
func writeConfig(path string, cfg engine.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("init: marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	return nil
}

func validateNonEmpty(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}

	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.New("must be a positive integer")
	}

	return nil
}
