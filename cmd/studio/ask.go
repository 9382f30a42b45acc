package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/agent"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a single query and exit",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "print only the answer"},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errors.New("ask: a query is required")
	}

	eng, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	out := writer(cmd)
	md := markdownRenderer(out)

	start := time.Now()
	res := eng.Ask(ctx, query, 0)

	if cmd.Bool("quiet") {
		fmt.Fprintln(out, res.Text)
	} else {
		fmt.Fprintln(out, renderAnswer(md, res))
		tc, tracked := eng.Usage()
		fmt.Fprintln(out, formatUsage(res, tc, tracked, time.Since(start)))
		if rl := formatRateLimit(eng.RateLimit(), time.Now()); rl != "" {
			fmt.Fprintln(out, rl)
		}
	}

	switch res.Status {
	case agent.StatusTransportError, agent.StatusFailed:
		return fmt.Errorf("ask: %s: %w", res.Status, res.Err)
	}

	return nil
}
