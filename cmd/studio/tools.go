package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/engine"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List the tools offered to the model",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the catalog with input schemas as JSON"},
		},
		Action: runTools,
	}
}

// catalogEntry is the JSON form of one tool.
type catalogEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

func runTools(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tools, err := engine.Catalog(ctx, cfg)
	if err != nil {
		return err
	}

	out := writer(cmd)

	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog(tools))
	}

	for _, t := range tools {
		fmt.Fprintln(out, toolNameStyle.Render(t.Name))
		fmt.Fprintln(out, "  "+dimStyle.Render(t.Description))
	}

	return nil
}

func catalog(tools []toolbox.Tool) []catalogEntry {
	entries := make([]catalogEntry, len(tools))
	for i, t := range tools {
		entries[i] = catalogEntry{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	}

	return entries
}
