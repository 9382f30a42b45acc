package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/agent"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
)

const defaultWrapWidth = 100

// markdownRenderer renders markdown for w when w is a terminal. It returns
// nil otherwise so answers are printed verbatim.
func markdownRenderer(w io.Writer) *glamour.TermRenderer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return nil
	}

	width := defaultWrapWidth
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 { //nolint:gosec // fd fits in int
		width = min(cols-4, defaultWrapWidth)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}

	return r
}

// renderMarkdown converts markdown text to terminal output. It falls back to
// plain text if the renderer is unavailable.
func renderMarkdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.Trim(out, "\n")
}

func renderUserMessage(text string) string {
	return userBlockStyle.Render(userPrefixStyle.Render("You > ") + text)
}

// renderAnswer formats an agent result. Failures are drawn in an error block.
func renderAnswer(r *glamour.TermRenderer, res agent.Result) string {
	switch res.Status {
	case agent.StatusTransportError, agent.StatusFailed:
		return errorBlockStyle.Render(res.Text)
	case agent.StatusAnswered:
		return answerBlockStyle.Render(answerPrefixStyle.Render("Studio >") + "\n" + renderMarkdown(r, res.Text))
	default:
		return answerBlockStyle.Render(answerPrefixStyle.Render("Studio > ") + dimStyle.Render(res.Text))
	}
}

// renderToolCall formats a tool invocation as a single line.
func renderToolCall(name string, args map[string]any) string {
	line := treeCorner + toolNameStyle.Render(name)
	if a := formatArgs(args); a != "" {
		line += " " + toolArgsStyle.Render(truncate(a, 80))
	}

	return line
}

func renderToolError(name string, err error) string {
	return treeCorner + toolErrorStyle.Render(name+" failed: "+truncate(err.Error(), 120))
}

// formatArgs renders arguments as sorted key=value pairs.
func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}

	return strings.Join(parts, " ")
}

// formatUsage summarizes one answer. Token counts are shown only when the
// provider tracks them.
func formatUsage(res agent.Result, tc usage.TokenCount, tracked bool, d time.Duration) string {
	parts := []string{
		fmt.Sprintf("%d %s", res.Iterations, plural(res.Iterations, "step", "steps")),
		fmtDuration(d),
	}
	if tracked {
		parts = append(parts,
			fmtTokens(tc.InputTokens)+" in",
			fmtTokens(tc.OutputTokens)+" out",
		)
	}

	return dimStyle.Render(strings.Join(parts, " · "))
}

// formatRateLimit describes the remaining provider allowance, or returns ""
// when the provider reported none.
func formatRateLimit(info *modeladapter.RateLimitInfo, now time.Time) string {
	if info == nil {
		return ""
	}

	parts := []string{
		fmt.Sprintf("%d %s left", info.RemainingRequests, plural(info.RemainingRequests, "request", "requests")),
		fmtTokens(info.RemainingTokens) + " tokens left",
	}
	if d := info.ResetIn(now); d > 0 {
		parts = append(parts, "resets in "+fmtDuration(d))
	}

	return dimStyle.Render(strings.Join(parts, " · "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}

// truncate returns s shortened to at most n runes, with "..." appended if
// truncated. Newlines are replaced with spaces for single-line display.
// truncate cuts s to n terminal columns, so wide runes count double.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= n {
		return s
	}

	return runewidth.Truncate(s, n, "") + "..."
}

// fmtTokens formats a token count for display, using k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
