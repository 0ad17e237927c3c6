package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paramload/internal/report"
	"paramload/internal/runner"
	"paramload/internal/scenario"
	"paramload/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----]", progressBar(0, 4))
	assert.Equal(t, "[██--]", progressBar(0.5, 4))
	assert.Equal(t, "[████]", progressBar(1.5, 4))
	assert.Equal(t, "[----]", progressBar(-1, 4))
}

func TestPrintSummary(t *testing.T) {
	s := stats.NewStats()
	s.Record("GET", scenario.NameTemplate, 5*time.Millisecond, 21, nil)
	s.Record("GET", scenario.NameTemplate, 5*time.Millisecond, 0, errors.New("HTTP 500 Internal Server Error"))

	var buf bytes.Buffer
	printSummary(&buf, report.Summarize(s), 3*time.Second)

	out := buf.String()
	assert.Contains(t, out, "/print-param?param={val}")
	assert.Contains(t, out, "Aggregated")
	assert.Contains(t, out, "1 x GET /print-param?param={val}: HTTP 500 Internal Server Error")
}

func TestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Parameter: " + r.URL.Query().Get("param")))
	}))
	defer srv.Close()

	r := runner.NewRunner(runner.Config{
		Host:        srv.URL,
		Users:       2,
		RunTime:     300 * time.Millisecond,
		Timeout:     time.Second,
		ParamLength: 10,
	}, nil)
	r.User.WaitTime = scenario.Constant(20 * time.Millisecond)

	var buf bytes.Buffer
	elapsed := Start(context.Background(), &buf, r)

	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	out := buf.String()
	require.True(t, strings.Contains(out, "LOAD TEST RESULTS"))
	assert.Contains(t, out, srv.URL)
	assert.NotZero(t, r.Stats.Total.Requests)
}
