package result

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"paramload/internal/report"
	"paramload/internal/tui/styles"
)

type Model struct {
	Summary report.Summary
	Table   table.Model

	Width  int
	Height int
}

func NewModel(sum report.Summary) Model {
	columns := []table.Column{
		{Title: "Type", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "# reqs", Width: 8},
		{Title: "# fails", Width: 8},
		{Title: "Avg", Width: 8},
		{Title: "P50", Width: 8},
		{Title: "P95", Width: 8},
		{Title: "P99", Width: 8},
		{Title: "req/s", Width: 8},
	}

	all := append(append([]report.Row{}, sum.Rows...), sum.Aggregated)
	rows := make([]table.Row, 0, len(all))
	for _, r := range all {
		rows = append(rows, table.Row{
			r.Method,
			r.Name,
			fmt.Sprintf("%d", r.Requests),
			fmt.Sprintf("%d", r.Failures),
			fmt.Sprintf("%.0f", r.AvgMs),
			fmt.Sprintf("%.0f", r.P50Ms),
			fmt.Sprintf("%.0f", r.P95Ms),
			fmt.Sprintf("%.0f", r.P99Ms),
			fmt.Sprintf("%.2f", r.RPS),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	return Model{Summary: sum, Table: t}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("📊 Test Complete"))
	s.WriteString("\n\n")
	s.WriteString(styles.Box.Render(m.Table.View()))
	s.WriteString("\n")

	if errs := m.Summary.Errors(); len(errs) > 0 {
		s.WriteString("\n")
		s.WriteString(styles.Error.Render("Failures"))
		s.WriteString("\n")
		lines := make([]string, 0, len(errs))
		for _, e := range errs {
			lines = append(lines, fmt.Sprintf("%d x %s %s: %s", e.Count, e.Method, e.Name, e.Message))
		}
		s.WriteString(styles.Box.Render(strings.Join(lines, "\n")))
		s.WriteString("\n")
	}

	return s.String()
}
