package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/engine"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// cannedCompleter answers every request with the same text.
type cannedCompleter struct {
	modeladapter.ModelAdapter

	reply string
	err   error
}

func (c *cannedCompleter) Complete(_ context.Context, _ *chat.Chat, _ []toolbox.Tool) (message.Message, error) {
	if c.err != nil {
		return message.Message{}, c.err
	}

	return message.NewText("", role.Assistant, c.reply), nil
}

// registerCanned registers a provider kind unique to the test.
func registerCanned(t *testing.T, c *cannedCompleter) string {
	t.Helper()

	kind := "canned-" + t.Name()
	engine.RegisterProvider(kind, func(_ context.Context, _ engine.ProviderConfig) (modeladapter.Completer, error) {
		return c, nil
	})

	return kind
}

// runApp runs the CLI with args and returns its stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(context.Background(), append([]string{appName, "--env", ""}, args...))

	return out.String(), err
}

func TestTools_ListsCatalog(t *testing.T) {
	out, err := runApp(t, "--output-dir", t.TempDir(), "tools")
	require.NoError(t, err)

	for _, name := range []string{
		"generate_thumbnail", "create_video_montage", "text_to_speech", "generate_qr_code", "create_social_card",
	} {
		assert.Contains(t, out, name)
	}
}

func TestTools_JSON(t *testing.T) {
	out, err := runApp(t, "--output-dir", t.TempDir(), "tools", "--json")
	require.NoError(t, err)

	var entries []catalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 5)
	for _, e := range entries {
		assert.NotEmpty(t, e.Description, e.Name)
		assert.True(t, json.Valid(e.InputSchema), e.Name)
	}
}

func TestTools_InvalidMode(t *testing.T) {
	_, err := runApp(t, "--mode", "sideways", "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestAsk_RequiresQuery(t *testing.T) {
	_, err := runApp(t, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestAsk_PrintsAnswer(t *testing.T) {
	kind := registerCanned(t, &cannedCompleter{reply: "Your thumbnail is ready."})

	out, err := runApp(t, "--provider", kind, "--output-dir", t.TempDir(), "ask", "--quiet", "make", "a", "thumbnail")
	require.NoError(t, err)
	assert.Equal(t, "Your thumbnail is ready.\n", out)
}

func TestAsk_TransportErrorFails(t *testing.T) {
	kind := registerCanned(t, &cannedCompleter{err: errors.New("connection reset by peer")})

	out, err := runApp(t, "--provider", kind, "--output-dir", t.TempDir(), "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport_error")
	assert.Contains(t, out, "connection reset by peer")
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))

	dir := t.TempDir()
	t.Chdir(dir)
	assert.Empty(t, resolveConfigPath(""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte("mode: local\n"), 0o600))
	assert.Equal(t, defaultConfigFile, resolveConfigPath(""))
}

// loadWith runs loadConfig under the app's global flags.
func loadWith(t *testing.T, args ...string) engine.Config {
	t.Helper()

	var cfg engine.Config
	cmd := &cli.Command{
		Name:      appName,
		Flags:     newApp().Flags,
		ErrWriter: io.Discard,
		Action: func(_ context.Context, cmd *cli.Command) error {
			var err error
			cfg, err = loadConfig(cmd)
			return err
		},
	}

	require.NoError(t, cmd.Run(context.Background(), append([]string{appName}, args...)))

	return cfg
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := loadWith(t,
		"--mode", "remote",
		"--provider", "anthropic",
		"--model", "claude-test",
		"--max-iterations", "4",
		"--output-dir", "media",
	)

	assert.Equal(t, engine.ModeRemote, cfg.Mode)
	assert.Equal(t, "anthropic", cfg.Provider.Kind)
	assert.Equal(t, "claude-test", cfg.Provider.Model)
	assert.Equal(t, 4, cfg.Agent.MaxIterations)
	assert.Equal(t, "media", cfg.OutputDir)
	assert.NotNil(t, cfg.Logger)
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "provider:\n  kind: gemini\n  model: gemini-test\nmode: local\noutput_dir: from-file\nagent:\n  max_iterations: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte(yaml), 0o600))

	cfg := loadWith(t, "--output-dir", "from-flag")

	assert.Equal(t, "gemini", cfg.Provider.Kind)
	assert.Equal(t, "gemini-test", cfg.Provider.Model)
	assert.Equal(t, 7, cfg.Agent.MaxIterations)
	assert.Equal(t, "from-flag", cfg.OutputDir)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := loadWith(t)

	def := engine.DefaultConfig()
	assert.Equal(t, def.Mode, cfg.Mode)
	assert.Equal(t, def.Provider.Kind, cfg.Provider.Kind)
	assert.Equal(t, def.Agent.MaxIterations, cfg.Agent.MaxIterations)
	assert.Equal(t, def.OutputDir, cfg.OutputDir)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	cmd := &cli.Command{
		Name:      appName,
		Flags:     newApp().Flags,
		ErrWriter: io.Discard,
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := loadConfig(cmd)
			return err
		},
	}

	err := cmd.Run(context.Background(), []string{appName, "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}
