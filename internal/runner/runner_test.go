package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"paramload/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paramPattern = regexp.MustCompile(`^[a-z]{10}$`)

type hit struct {
	method string
	path   string
	query  map[string][]string
}

type targetRecorder struct {
	mu     sync.Mutex
	hits   []hit
	status int
}

func (tr *targetRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tr.mu.Lock()
	tr.hits = append(tr.hits, hit{method: r.Method, path: r.URL.Path, query: r.URL.Query()})
	status := tr.status
	tr.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte("Parameter: " + r.URL.Query().Get("param")))
}

func (tr *targetRecorder) snapshot() []hit {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]hit, len(tr.hits))
	copy(out, tr.hits)
	return out
}

func testConfig(host string) Config {
	return Config{
		Host:        host,
		Users:       1,
		Timeout:     2 * time.Second,
		ParamLength: 10,
		MinWait:     time.Second,
		MaxWait:     5 * time.Second,
		OutPrefix:   "results",
	}
}

func runOnce(r *Runner) {
	c := &httpClient{r: r, userID: "test-user"}
	r.User.Tasks[0].Fn(context.Background(), c)
}

func TestAction_SingleGet(t *testing.T) {
	tr := &targetRecorder{}
	srv := httptest.NewServer(tr)
	defer srv.Close()

	r := NewRunner(testConfig(srv.URL), nil)
	runOnce(r)

	hits := tr.snapshot()
	require.Len(t, hits, 1)
	assert.Equal(t, http.MethodGet, hits[0].method)
	assert.Equal(t, "/print-param", hits[0].path)
	require.Len(t, hits[0].query, 1)
	require.Len(t, hits[0].query["param"], 1)
	assert.Regexp(t, paramPattern, hits[0].query["param"][0])

	e, ok := r.Stats.Lookup(http.MethodGet, scenario.NameTemplate)
	require.True(t, ok)
	assert.EqualValues(t, 1, e.Requests)
	assert.EqualValues(t, 0, e.Failures)

	results := r.ResultsCopy()
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, http.StatusOK, results[0].Status)
	assert.Equal(t, "test-user", results[0].UserID)
	assert.EqualValues(t, len("Parameter: ")+10, results[0].Bytes)
}

func TestAction_ResponsesNeverEscape(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		closed     bool
		wantStatus int
		wantErr    string
	}{
		{name: "ok", status: http.StatusOK, wantStatus: http.StatusOK},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: 500, wantErr: "HTTP 500 Internal Server Error"},
		{name: "bad request", status: http.StatusBadRequest, wantStatus: 400, wantErr: "HTTP 400 Bad Request"},
		{name: "connection refused", closed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &targetRecorder{status: tc.status}
			srv := httptest.NewServer(tr)
			host := srv.URL
			if tc.closed {
				srv.Close()
			} else {
				defer srv.Close()
			}

			r := NewRunner(testConfig(host), nil)
			require.NotPanics(t, func() { runOnce(r) })

			results := r.ResultsCopy()
			require.Len(t, results, 1)
			res := results[0]
			assert.Equal(t, tc.wantStatus, res.Status)

			switch {
			case tc.closed:
				assert.False(t, res.Success)
				assert.NotEmpty(t, res.Error)
				assert.EqualValues(t, 1, r.Stats.Total.Failures)
			case tc.wantErr != "":
				assert.False(t, res.Success)
				assert.Equal(t, tc.wantErr, res.Error)
				assert.EqualValues(t, 1, r.Stats.Total.Failures)
			default:
				assert.True(t, res.Success)
				assert.Empty(t, res.Error)
			}
		})
	}
}

func TestRun_UsersStopAfterRunTime(t *testing.T) {
	tr := &targetRecorder{}
	srv := httptest.NewServer(tr)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Users = 3
	cfg.RunTime = 300 * time.Millisecond
	updates := make(StatsUpdateChan, 100)

	r := NewRunner(cfg, updates)
	r.User.WaitTime = scenario.Constant(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after run time")
	}

	hits := tr.snapshot()
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "/print-param", h.path)
		assert.Regexp(t, paramPattern, h.query["param"][0])
	}

	entries := r.Stats.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, scenario.NameTemplate, entries[0].Name)
	assert.EqualValues(t, len(r.ResultsCopy()), entries[0].Requests)

	assert.Zero(t, r.GetUsers())
	assert.Zero(t, r.GetInflight())
	assert.NotEmpty(t, updates)
}

func TestRun_CancelDuringSpawn(t *testing.T) {
	tr := &targetRecorder{}
	srv := httptest.NewServer(tr)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Users = 100
	cfg.SpawnRate = 10

	r := NewRunner(cfg, nil)
	r.User.WaitTime = scenario.Constant(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	start := time.Now()
	r.Run(ctx)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, r.GetUsers())
}

func TestRun_WaitsBeforeFirstAction(t *testing.T) {
	tr := &targetRecorder{}
	srv := httptest.NewServer(tr)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RunTime = 200 * time.Millisecond

	// default policy waits at least one second, so nothing is sent
	r := NewRunner(cfg, nil)
	r.Run(context.Background())

	assert.Empty(t, tr.snapshot())
	assert.Zero(t, r.Stats.Total.Requests)
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusTooManyRequests}
	assert.Equal(t, "HTTP 429 Too Many Requests", err.Error())
}

func TestResults_OnlyKeptForReports(t *testing.T) {
	srv := httptest.NewServer(&targetRecorder{})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.OutPrefix = ""
	r := NewRunner(cfg, nil)
	runOnce(r)
	runOnce(r)

	assert.Empty(t, r.ResultsCopy())
	assert.EqualValues(t, 2, r.Stats.Total.Requests)
}

func TestResults_Capped(t *testing.T) {
	r := NewRunner(testConfig("http://localhost:0"), nil)
	assert.Equal(t, DefaultMaxResults, r.MaxResults)
	r.MaxResults = 2

	for i := 0; i < 3; i++ {
		r.addResult(Result{Name: "n"})
	}

	assert.Len(t, r.ResultsCopy(), 2)
	assert.EqualValues(t, 1, r.Dropped)
}

func TestAction_TruncatedBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	r := NewRunner(testConfig(srv.URL), nil)
	require.NotPanics(t, func() { runOnce(r) })

	results := r.ResultsCopy()
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "read body")
	assert.EqualValues(t, 1, r.Stats.Total.Failures)
}

func TestTLS_VerifiedUnlessInsecure(t *testing.T) {
	srv := httptest.NewTLSServer(&targetRecorder{})
	defer srv.Close()

	testCases := []struct {
		name     string
		insecure bool
		wantOK   bool
	}{
		{name: "verified by default", insecure: false, wantOK: false},
		{name: "insecure skips verification", insecure: true, wantOK: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(srv.URL)
			cfg.Insecure = tc.insecure
			r := NewRunner(cfg, nil)
			runOnce(r)

			results := r.ResultsCopy()
			require.Len(t, results, 1)
			assert.Equal(t, tc.wantOK, results[0].Success, results[0].Error)
		})
	}
}
