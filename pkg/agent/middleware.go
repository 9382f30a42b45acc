package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Request is one query handed to a Runner.
type Request struct {
	Query  string
	Budget int
}

// Runner answers a query.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}

type RunnerFunc func(ctx context.Context, req Request) Result

func (f RunnerFunc) Run(ctx context.Context, req Request) Result { return f(ctx, req) }

// Middleware decorates a Runner.
type Middleware func(next Runner) Runner

// Timeout cancels the query after d. A model call cut short this way ends
// the query as a transport error.
func Timeout(d time.Duration) Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req Request) Result {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Run(ctx, req)
		})
	}
}

// Recovery converts a panic below it into a StatusFailed result.
func Recovery() Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req Request) (res Result) {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("agent panicked: %v", r)
					res = Result{Text: Text(KindOther, err), Status: StatusFailed, Err: err}
				}
			}()

			return next.Run(ctx, req)
		})
	}
}

// Logger records each query's outcome. Answered queries log at info, queries
// that ran out of steps at warn and errored ones at error.
func Logger(log *slog.Logger, name string) Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req Request) Result {
			log.DebugContext(ctx, "query started", "agent", name, "budget", req.Budget, "query", clip(req.Query, 80))

			start := time.Now()
			res := next.Run(ctx, req)

			attrs := []any{
				"agent", name,
				"status", res.Status,
				"iterations", res.Iterations,
				"duration", time.Since(start).Round(time.Millisecond),
			}

			switch {
			case res.Err != nil:
				log.ErrorContext(ctx, "query failed", append(attrs, "error", res.Err)...)
			case res.Status == StatusMaxIterations:
				log.WarnContext(ctx, "query hit iteration budget", attrs...)
			default:
				log.InfoContext(ctx, "query finished", attrs...)
			}

			return res
		})
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "…"
}
