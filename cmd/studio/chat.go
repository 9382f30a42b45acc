package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/agent"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/engine"
	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
)

// quitWords end the chat when submitted on their own.
var quitWords = map[string]bool{"quit": true, "exit": true, "q": true}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Start an interactive session (default)",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	eng, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	out := writer(cmd)
	model := newChatModel(ctx, eng, markdownRenderer(out))
	model.banner = banner(eng.Mode(), len(eng.Tools()))

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(reader(cmd)),
		tea.WithOutput(out),
	)

	stop := startBridge(ctx, p, eng.Events())
	defer stop()

	_, err = p.Run()
	if ctx.Err() != nil {
		return nil
	}

	return err
}

// startBridge forwards tool events to the program. The returned function
// stops the forwarder and waits for it to exit.
func startBridge(ctx context.Context, p *tea.Program, events *engine.EventBus) func() {
	bridgeCtx, cancel := context.WithCancel(ctx)
	sub := events.Subscribe(64, engine.EventToolCallStart, engine.EventToolCallEnd)

	var wg sync.WaitGroup
	wg.Go(func() {
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-bridgeCtx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				p.Send(toolEventMsg{event: ev})
			}
		}
	})

	return func() {
		cancel()
		wg.Wait()
	}
}

// asker is the part of the engine the chat model drives.
type asker interface {
	Ask(ctx context.Context, query string, budget int) agent.Result
	Usage() (usage.TokenCount, bool)
}

// answerMsg carries a finished query back to the model. Tokens holds the
// usage of this query alone.
type answerMsg struct {
	result  agent.Result
	elapsed time.Duration
	tokens  usage.TokenCount
	tracked bool
}

// toolEventMsg delivers a tool call event from the bridge goroutine.
type toolEventMsg struct {
	event engine.Event
}

// chatModel is the root bubbletea model: an input box while idle and a
// spinner while a query runs. Finished output is printed above the view.
type chatModel struct {
	ctx    context.Context
	eng    asker
	md     *glamour.TermRenderer
	input  textarea.Model
	spin   spinner.Model
	busy   bool
	status string
	banner string
}

func newChatModel(ctx context.Context, eng asker, md *glamour.TermRenderer) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Describe the content you need... (quit to exit)"
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.CharLimit = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	return chatModel{
		ctx:   ctx,
		eng:   eng,
		md:    md,
		input: ta,
		spin:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle)),
	}
}

func (m chatModel) Init() tea.Cmd {
	if m.banner == "" {
		return textarea.Blink
	}

	return tea.Batch(textarea.Blink, tea.Println(m.banner))
}

func banner(mode string, tools int) string {
	return dimStyle.Render(fmt.Sprintf("%s %s · %s tools · %d available", appName, version, mode, tools))
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case toolEventMsg:
		return m.handleToolEvent(msg.event)

	case answerMsg:
		m.busy = false
		m.status = ""
		return m, tea.Sequence(
			tea.Println(renderAnswer(m.md, msg.result)),
			tea.Println(formatUsage(msg.result, msg.tokens, msg.tracked, msg.elapsed)),
		)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.busy || msg.Alt {
			break
		}
		return m.submit()
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.input.Reset()

	if quitWords[strings.ToLower(text)] {
		return m, tea.Quit
	}

	m.busy = true
	m.status = "Thinking..."

	return m, tea.Batch(
		tea.Println(renderUserMessage(text)),
		m.spin.Tick,
		m.ask(text),
	)
}

// ask runs the query off the UI goroutine.
func (m chatModel) ask(text string) tea.Cmd {
	return func() tea.Msg {
		before, _ := m.eng.Usage()
		start := time.Now()
		res := m.eng.Ask(m.ctx, text, 0)
		after, tracked := m.eng.Usage()

		return answerMsg{
			result:  res,
			elapsed: time.Since(start),
			tokens:  after.Sub(before),
			tracked: tracked,
		}
	}
}

func (m chatModel) handleToolEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	call, ok := ev.Data.(engine.ToolCall)
	if !ok {
		return m, nil
	}

	switch ev.Kind {
	case engine.EventToolCallStart:
		m.status = "Running " + call.Name + "..."
		return m, tea.Println(renderToolCall(call.Name, call.Args))
	case engine.EventToolCallEnd:
		m.status = "Thinking..."
		if call.Err != nil {
			return m, tea.Println(renderToolError(call.Name, call.Err))
		}
	}

	return m, nil
}

func (m chatModel) View() string {
	if m.busy {
		return m.spin.View() + " " + spinnerStyle.Render(m.status) + "\n"
	}

	return inputBorderStyle.Render(m.input.View()) + "\n" + dimStyle.Render("enter to send · alt+enter for newline · ctrl+c to quit")
}
