package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paramload/internal/runner"
	"paramload/internal/tui/components"
	"paramload/internal/tui/styles"
)

type Model struct {
	Stats    runner.StatsSnapshot
	Progress progress.Model

	RpsLine     components.Sparkline
	LatencyLine components.Sparkline

	StartTime  time.Time
	RunTime    time.Duration
	LastUpdate time.Time
	LastReqs   uint64

	Width  int
	Height int
}

func NewModel(runTime time.Duration) Model {
	now := time.Now()
	return Model{
		Progress:    progress.New(progress.WithDefaultGradient()),
		RpsLine:     components.NewSparkline(40, "RPS", styles.Active),
		LatencyLine: components.NewSparkline(40, "Latency P90 (ms)", styles.Warn),
		StartTime:   now,
		RunTime:     runTime,
		LastUpdate:  now,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.StatsSnapshot:
		now := time.Now()
		dt := now.Sub(m.LastUpdate).Seconds()
		if dt < 0.01 {
			dt = 0.01
		}

		m.RpsLine.Add(float64(msg.Requests-m.LastReqs) / dt)
		m.LatencyLine.Add(msg.P90Ms)

		m.Stats = msg
		m.LastReqs = msg.Requests
		m.LastUpdate = now

		return m, m.Progress.SetPercent(m.Percent(now))

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 8
		if half < 10 {
			half = 10
		}
		m.RpsLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// Percent is the share of the run time elapsed at now; 0 for open-ended runs.
func (m Model) Percent(now time.Time) float64 {
	if m.RunTime <= 0 {
		return 0
	}
	pct := float64(now.Sub(m.StartTime)) / float64(m.RunTime)
	if pct > 1.0 {
		pct = 1.0
	}
	return pct
}

func (m Model) View() string {
	s := strings.Builder{}

	reqs := m.Stats.Requests
	errRate := 0.0
	if reqs > 0 {
		errRate = (float64(m.Stats.Failures) / float64(reqs)) * 100
	}

	col1 := fmt.Sprintf("USERS: %d\nINF:   %d", m.Stats.Users, m.Stats.Inflight)
	col2 := fmt.Sprintf("REQ:  %d\nFAIL: %d", reqs, m.Stats.Failures)
	col3 := styles.ErrorRate(errRate).Render(fmt.Sprintf("ERR:   %.2f%%\nKB:    %d", errRate, m.Stats.Bytes/1024))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(col2),
		styles.Box.Render(col3),
	))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.RpsLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	latencies := fmt.Sprintf(
		"P50: %.2f ms  |  P90: %.2f ms  |  P99: %.2f ms  |  Max: %.2f ms",
		m.Stats.P50Ms, m.Stats.P90Ms, m.Stats.P99Ms, m.Stats.MaxMs,
	)
	box := styles.Box
	if m.Width > 4 {
		box = box.Width(m.Width - 4)
	}
	s.WriteString(box.Render(latencies))
	s.WriteString("\n\n")

	if m.RunTime > 0 {
		s.WriteString(m.Progress.View())
	} else {
		s.WriteString(styles.Subtle.Render(fmt.Sprintf("Elapsed %s (no run time limit)", time.Since(m.StartTime).Round(time.Second))))
	}

	return s.String()
}
