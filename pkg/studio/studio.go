package studio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	osexec "os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// DefaultOutputDir is where generated files go when no directory is given.
const DefaultOutputDir = "content_outputs"

// CommandRunner runs an external program to completion.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Option configures a Studio.
type Option func(*Studio)

// WithLogger sets the logger used for external command output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Studio) { s.log = log }
}

// WithCommandRunner replaces the runner used for ffmpeg and espeak.
func WithCommandRunner(run CommandRunner) Option {
	return func(s *Studio) { s.run = run }
}

// WithLookPath replaces the executable lookup used to detect ffmpeg and
// espeak.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(s *Studio) { s.lookPath = lookPath }
}

// Studio generates media files into a single output directory.
type Studio struct {
	dir      string
	log      *slog.Logger
	run      CommandRunner
	lookPath func(string) (string, error)
	newID    func() string
}

// New creates a Studio writing into dir. An empty dir means
// DefaultOutputDir. The directory is created on the first write.
func New(dir string, opts ...Option) *Studio {
	if dir == "" {
		dir = DefaultOutputDir
	}

	s := &Studio{
		dir:      dir,
		log:      slog.Default(),
		lookPath: osexec.LookPath,
		newID:    shortID,
	}
	s.run = s.runCommand

	for _, o := range opts {
		o(s)
	}

	return s
}

// Dir returns the output directory.
func (s *Studio) Dir() string { return s.dir }

// Tools returns a ToolBox with the five studio tools.
func (s *Studio) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(
		s.thumbnailTool(),
		s.montageTool(),
		s.speechTool(),
		s.qrCodeTool(),
		s.socialCardTool(),
	)

	return tb
}

// Tools is a shorthand for New(dir).Tools().
func Tools(dir string, opts ...Option) *toolbox.ToolBox {
	return New(dir, opts...).Tools()
}

// Result is the JSON document a studio tool returns.
type Result map[string]any

func success(path string, fields Result) Result {
	r := Result{
		"status":   "success",
		"filepath": path,
		"filename": filepath.Base(path),
	}
	for k, v := range fields {
		r[k] = v
	}

	return r
}

func failure(format string, args ...any) Result {
	return Result{
		"status":  "error",
		"message": fmt.Sprintf(format, args...),
	}
}

// OK reports whether the result has status "success".
func (r Result) OK() bool {
	return r["status"] == "success"
}

// validator is implemented by parameter structs that check their own
// values after defaults are applied.
type validator interface {
	Validate() error
}

// decode fills in over the defaults already present in params.
func decode[T any](tool string, args map[string]any, params *T) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", tool, err)
	}

	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%s: invalid arguments: %w", tool, err)
	}

	if v, ok := any(params).(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", tool, err)
		}
	}

	return nil
}

// outputPath returns a fresh file path of the form <kind>_<id>.<ext>.
func (s *Studio) outputPath(kind, ext string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.%s", kind, s.newID(), ext)), nil
}

func shortID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:4])
}

func (s *Studio) runCommand(ctx context.Context, name string, args ...string) error {
	cmd := osexec.CommandContext(ctx, name, args...) //nolint:gosec // fixed program names

	out, err := cmd.CombinedOutput()
	if err != nil {
		s.log.Debug("external command failed", "command", name, "output", string(out))
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

func (s *Studio) requireProgram(names ...string) (string, error) {
	for _, n := range names {
		if p, err := s.lookPath(n); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH", names[0])
}
