package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/mmbverify/internal/config"
	"github.com/wippyai/mmbverify/verifier"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	declStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	localStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// headerLines is the number of rows View renders above the viewport.
const headerLines = 3

type declMsg verifier.Decl

type doneMsg struct {
	err     error
	outline *verifier.Outline
	elapsed time.Duration
}

type interactiveModel struct {
	err      error
	outline  *verifier.Outline
	ctx      context.Context
	cancel   context.CancelFunc
	events   chan tea.Msg
	filename string
	lines    []string
	spinner  spinner.Model
	viewport viewport.Model
	elapsed  time.Duration
	cfg      config.Config
	done     bool
}

func newInteractiveModel(filename string, cfg config.Config) *interactiveModel {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = declStyle
	return &interactiveModel{
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan tea.Msg, 64),
		filename: filename,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		cfg:      cfg,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.verify, m.waitForEvent)
}

// verify runs the whole check and reports through m.events.
func (m *interactiveModel) verify() tea.Msg {
	start := time.Now()
	f, err := load(m.filename)
	if err != nil {
		m.events <- doneMsg{err: err}
		return nil
	}

	opts := verifier.DefaultOptions()
	opts.AllowSorry = m.cfg.AllowSorry
	opts.Progress = func(d verifier.Decl) {
		m.events <- declMsg(d)
	}

	v := verifier.New(f, opts)
	err = v.Verify(m.ctx)
	m.events <- doneMsg{err: err, outline: v.Outline(), elapsed: time.Since(start)}
	return nil
}

func (m *interactiveModel) waitForEvent() tea.Msg {
	return <-m.events
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerLines-2, 1)

	case declMsg:
		d := verifier.Decl(msg)
		line := declStyle.Render(d.String())
		if d.Kind.IsLocal() {
			line += localStyle.Render(" (local)")
		}
		m.lines = append(m.lines, fmt.Sprintf("%s  @%#x", line, d.Offset))
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, m.waitForEvent

	case doneMsg:
		m.done = true
		m.err = msg.err
		m.outline = msg.outline
		m.elapsed = msg.elapsed
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MMB Verifier"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch {
	case !m.done:
		b.WriteString(fmt.Sprintf("%s verifying... %d declarations", m.spinner.View(), len(m.lines)))
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	default:
		b.WriteString(resultStyle.Render(fmt.Sprintf("verified %d sorts, %d terms, %d theorems in %s",
			m.outline.NumSorts(), m.outline.NumTerms(), m.outline.NumThms(),
			m.elapsed.Round(time.Microsecond))))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll • q quit"))

	return b.String()
}

// result reports how the session ended. Quitting before verification
// finishes counts as a failure.
func (m *interactiveModel) result() error {
	if !m.done {
		return errors.New("verification interrupted")
	}
	return m.err
}

func runInteractive(filename string, cfg config.Config) error {
	p := tea.NewProgram(newInteractiveModel(filename, cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(*interactiveModel)
	if !ok {
		return fmt.Errorf("unexpected model %T", final)
	}
	return m.result()
}
