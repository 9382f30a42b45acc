package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/studio"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/mcpserver"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the studio tools as an MCP server over stdio",
		Action: runServe,
	}
}

// runServe exposes the studio tools on stdin/stdout. Logs go to stderr so the
// protocol stream stays clean.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tools := studio.New(cfg.OutputDir, studio.WithLogger(cfg.Logger))

	srv := mcpserver.New(serverName, version, cfg.Logger,
		mcpserver.WithInstructions("Creative media tools. Every tool writes its file under "+tools.Dir()+" and returns a JSON status."))
	srv.Register(tools.Tools())

	cfg.Logger.Debug("serving studio tools", "output_dir", tools.Dir())

	return srv.Serve(ctx, reader(cmd), writer(cmd))
}
