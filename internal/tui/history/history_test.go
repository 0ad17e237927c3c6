package history

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paramload/internal/report"
	"paramload/internal/runner"
	"paramload/internal/storage"
)

func sampleRuns() []storage.RunRecord {
	return []storage.RunRecord{
		{
			ID:        "run-2",
			StartedAt: time.Date(2026, 10, 2, 9, 0, 0, 0, time.Local),
			Duration:  90 * time.Second,
			Config:    runner.Config{Host: "http://localhost:8080", Users: 20},
			Summary:   report.Summary{Aggregated: report.Row{Requests: 300, Failures: 4, P95Ms: 41.6}},
		},
		{
			ID:        "run-1",
			StartedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.Local),
			Duration:  time.Minute,
			Config:    runner.Config{Host: "http://localhost:8080", Users: 10},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRuns())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"2026-10-02 09:00:00", "http://localhost:8080", "20", "1m30s", "300", "4", "42",
	}, []string(rows[0]))
}

func TestSelected_FollowsCursor(t *testing.T) {
	m := NewModel(sampleRuns())

	run, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "run-2", run.ID)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	run, ok = next.(Model).Selected()
	require.True(t, ok)
	assert.Equal(t, "run-1", run.ID)
}

func TestView_Empty(t *testing.T) {
	m := NewModel(nil)
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No runs recorded yet.")
}

func TestUpdate_Quit(t *testing.T) {
	_, cmd := NewModel(sampleRuns()).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
