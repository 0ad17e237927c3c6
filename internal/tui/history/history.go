package history

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paramload/internal/storage"
	"paramload/internal/tui/styles"
)

// Model is a browsable table of past runs, newest first.
type Model struct {
	Runs  []storage.RunRecord
	Table table.Model

	Width  int
	Height int
}

func NewModel(runs []storage.RunRecord) Model {
	columns := []table.Column{
		{Title: "Started", Width: 20},
		{Title: "Host", Width: 28},
		{Title: "Users", Width: 6},
		{Title: "Duration", Width: 10},
		{Title: "Reqs", Width: 8},
		{Title: "Fails", Width: 8},
		{Title: "P95 ms", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(Rows(runs)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{Runs: runs, Table: t}
}

// Rows renders runs as table rows.
func Rows(runs []storage.RunRecord) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, run := range runs {
		agg := run.Summary.Aggregated
		rows[i] = table.Row{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Config.Host,
			fmt.Sprintf("%d", run.Config.Users),
			run.Duration.Round(1e9).String(),
			fmt.Sprintf("%d", agg.Requests),
			fmt.Sprintf("%d", agg.Failures),
			fmt.Sprintf("%.0f", agg.P95Ms),
		}
	}
	return rows
}

// Selected returns the run under the cursor.
func (m Model) Selected() (storage.RunRecord, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Runs) {
		return storage.RunRecord{}, false
	}
	return m.Runs[i], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	s := styles.Title.Render("🗂  Run History") + "\n\n"
	if len(m.Runs) == 0 {
		return s + styles.Subtle.Render("No runs recorded yet.") + "\n"
	}

	s += styles.Box.Render(m.Table.View()) + "\n"
	if run, ok := m.Selected(); ok {
		s += styles.Subtle.Render("id "+run.ID) + "\n"
	}
	s += styles.RenderKey("↑/↓", "select") + "  " + styles.RenderKey("q", "quit") + "\n"
	return s
}
