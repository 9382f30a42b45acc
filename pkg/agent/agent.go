// Package agent runs the tool-calling loop: it sends the conversation and the
// tool catalog to a model, dispatches the tool calls the model asks for, feeds
// the results back, and repeats until the model answers or the iteration
// budget runs out.
package agent

import (
	"context"
	"log/slog"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/chat"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/message"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/chats/role"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

// DefaultMaxIterations is the iteration budget used when none is configured.
const DefaultMaxIterations = 10

// Terminal texts returned when the loop ends without a model answer.
const (
	MaxIterationsText = "Agent reached maximum iterations without completing task"
	NoResponseText    = "Agent did not provide a response"
)

// previewLen bounds tool arguments and results in log lines.
const previewLen = 200

// Status tells how a query ended.
type Status int

const (
	StatusAnswered       Status = iota // The model returned final text.
	StatusNoResponse                   // The model returned neither text nor tool calls.
	StatusMaxIterations                // The budget ran out while the model kept calling tools.
	StatusTransportError               // A model round-trip failed.
	StatusFailed                       // The loop itself failed (e.g. a recovered panic).
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusNoResponse:
		return "no_response"
	case StatusMaxIterations:
		return "max_iterations"
	case StatusTransportError:
		return "transport_error"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one query. Text is always set: it is the model's
// answer or one of the fixed terminal texts.
type Result struct {
	Text       string
	Status     Status
	Iterations int   // Model round-trips performed.
	Err        error // Set for StatusTransportError and StatusFailed.
}

// Options configures an Agent.
type Options struct {
	Name          string       // Sender name on assistant and tool messages.
	Instructions  string       // Optional system prompt.
	MaxIterations int          // Default budget (0 = DefaultMaxIterations).
	Logger        *slog.Logger // Nil falls back to slog.Default.
	Middleware    []Middleware // Applied around every query.
}

// Agent owns the loop for one completer and one tool registry. It keeps no
// state between queries: each query starts a fresh conversation.
type Agent struct {
	name         string
	instructions string
	completer    modeladapter.Completer
	registry     toolbox.Registry
	maxIter      int
	log          *slog.Logger
	runner       Runner
}

// New creates an Agent with the given completer, registry and options.
func New(completer modeladapter.Completer, reg toolbox.Registry, opts Options) *Agent {
	a := &Agent{
		name:         opts.Name,
		instructions: opts.Instructions,
		completer:    completer,
		registry:     reg,
		maxIter:      opts.MaxIterations,
		log:          opts.Logger,
	}

	if a.name == "" {
		a.name = "studio"
	}
	if a.maxIter <= 0 {
		a.maxIter = DefaultMaxIterations
	}
	if a.log == nil {
		a.log = slog.Default()
	}

	var runner Runner = RunnerFunc(a.loop)

	// Apply middleware in reverse order so the first middleware is outermost.
	for i := len(opts.Middleware) - 1; i >= 0; i-- {
		runner = opts.Middleware[i](runner)
	}
	a.runner = runner

	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// MaxIterations returns the default iteration budget.
func (a *Agent) MaxIterations() int { return a.maxIter }

// Tools returns the catalog the agent offers to the model.
func (a *Agent) Tools() []toolbox.Tool { return a.registry.Tools() }

// Run answers query with the default budget.
func (a *Agent) Run(ctx context.Context, query string) Result {
	return a.runner.Run(ctx, Request{Query: query, Budget: a.maxIter})
}

// Query answers query within budget model round-trips. A budget of zero or
// less uses the default.
func (a *Agent) Query(ctx context.Context, query string, budget int) Result {
	if budget <= 0 {
		budget = a.maxIter
	}

	return a.runner.Run(ctx, Request{Query: query, Budget: budget})
}

// ProcessQuery is Query reduced to the terminal text.
func (a *Agent) ProcessQuery(ctx context.Context, query string, budget int) string {
	return a.Query(ctx, query, budget).Text
}

func (a *Agent) loop(ctx context.Context, req Request) Result {
	budget := req.Budget
	if budget <= 0 {
		budget = a.maxIter
	}

	c := chat.New()
	if a.instructions != "" {
		c.Append(message.NewText(a.name, role.System, a.instructions))
	}
	c.Append(message.NewText("user", role.User, req.Query))

	tools := a.registry.Tools()

	for i := range budget {
		if a.log.Enabled(ctx, slog.LevelDebug) {
			a.log.DebugContext(ctx, "sending conversation", "agent", a.name, "iteration", i+1,
				"budget", budget, "messages", c.Len())
			for _, tc := range c.Unanswered() {
				a.log.ErrorContext(ctx, "tool call has no result", "agent", a.name, "tool", tc.Name, "id", tc.ID)
			}
		}

		reply, err := a.completer.Complete(ctx, c, tools)
		if err != nil {
			kind := Classify(err)
			a.log.ErrorContext(ctx, "model request failed", "agent", a.name, "kind", kind, "error", err)

			return Result{Text: Text(kind, err), Status: StatusTransportError, Iterations: i + 1, Err: err}
		}

		calls := reply.ToolCalls()
		if len(calls) == 0 {
			if text := reply.TextContent(); text != "" {
				return Result{Text: text, Status: StatusAnswered, Iterations: i + 1}
			}

			return Result{Text: NoResponseText, Status: StatusNoResponse, Iterations: i + 1}
		}

		reply.Sender = a.name
		c.Append(reply)

		for _, tc := range calls {
			a.log.InfoContext(ctx, "calling tool", "agent", a.name, "tool", tc.Name, "args", preview(tc.Arguments))

			result := toolbox.Call(ctx, a.registry, tc, a.log)

			a.log.InfoContext(ctx, "tool finished", "agent", a.name, "tool", tc.Name,
				"is_error", result.IsError, "result", preview(result.Content))
			c.Append(message.New(a.name, role.Tool, result))
		}
	}

	a.log.WarnContext(ctx, "iteration budget exhausted", "agent", a.name, "budget", budget)

	return Result{Text: MaxIterationsText, Status: StatusMaxIterations, Iterations: budget}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
