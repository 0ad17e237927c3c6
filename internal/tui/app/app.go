package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"paramload/internal/report"
	"paramload/internal/runner"
	"paramload/internal/tui/live"
	"paramload/internal/tui/result"
	"paramload/internal/tui/styles"
)

// DoneMsg is delivered once the runner has stopped.
type DoneMsg struct{}

// Model shows the live dashboard while the run is going and the result
// table afterwards.
type Model struct {
	Runner  *runner.Runner
	Updates runner.StatsUpdateChan
	Done    <-chan struct{}

	// Stop asks the runner to end early.
	Stop func()

	Live   live.Model
	Result result.Model

	Finished bool
	Stopping bool

	Width  int
	Height int
}

func NewModel(r *runner.Runner, done <-chan struct{}, stop func()) Model {
	return Model{
		Runner:  r,
		Updates: r.Updates,
		Done:    done,
		Stop:    stop,
		Live:    live.NewModel(r.Cfg.RunTime),
	}
}

func waitForUpdate(updates runner.StatsUpdateChan) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return DoneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.Updates),
		waitForDone(m.Done),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		m.Result, _ = m.Result.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.Finished {
				return m, tea.Quit
			}
			if !m.Stopping && m.Stop != nil {
				m.Stopping = true
				m.Stop()
			}
			return m, nil
		}

	case runner.StatsSnapshot:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		if m.Finished {
			return m, cmd
		}
		return m, tea.Batch(cmd, waitForUpdate(m.Updates))

	case DoneMsg:
		m.Finished = true
		m.Result = result.NewModel(report.Summarize(m.Runner.Stats))
		m.Result, _ = m.Result.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
		return m, nil

	default:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	cfg := m.Runner.Cfg
	s.WriteString(styles.Title.Render("🚀 paramload"))
	s.WriteString("\n")
	s.WriteString(styles.Subtle.Render(fmt.Sprintf(
		"Host: %s | Users: %d @ %.2f/s | Wait: %s-%s",
		cfg.Host, cfg.Users, cfg.SpawnRate, cfg.MinWait, cfg.MaxWait,
	)))
	s.WriteString("\n\n")

	if m.Finished {
		s.WriteString(m.Result.View())
		s.WriteString("\n")
		s.WriteString(styles.RenderKey("q", "quit"))
		return s.String()
	}

	s.WriteString(m.Live.View())
	s.WriteString("\n\n")
	if m.Stopping {
		s.WriteString(styles.Warn.Render("Stopping users..."))
	} else {
		s.WriteString(styles.RenderKey("q", "stop run"))
	}
	return s.String()
}
