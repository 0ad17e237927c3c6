package target_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paramload/internal/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *target.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return target.NewServer(logger, target.ServerConfig{ShutdownTimeout: time.Second})
}

func TestPrintParam(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "echoes param",
			target:     "/print-param?param=abcdefghij",
			wantStatus: http.StatusOK,
			wantBody:   "Parameter: abcdefghij",
		},
		{
			name:       "empty param",
			target:     "/print-param?param=",
			wantStatus: http.StatusOK,
			wantBody:   "Parameter: ",
		},
		{
			name:       "missing param",
			target:     "/print-param",
			wantStatus: http.StatusBadRequest,
			wantBody:   "'param' is not present",
		},
		{
			name:       "first value wins",
			target:     "/print-param?param=one&param=two",
			wantStatus: http.StatusOK,
			wantBody:   "Parameter: one",
		},
	}

	h := newServer().Handler()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			res := rr.Result()
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tc.wantBody, string(body))
			} else {
				assert.Contains(t, string(body), tc.wantBody)
			}
		})
	}
}

func TestPrintParam_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/print-param?param=x", nil)
	rr := httptest.NewRecorder()
	newServer().Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	newServer().Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetrics(t *testing.T) {
	h := newServer().Handler()

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/print-param?param=abc", nil))
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(),
		`paramload_target_requests_total{method="GET",route="/print-param",status="200"} 3`)
}

func TestRun_Shutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := target.NewServer(logger, target.ServerConfig{
		Host:            "127.0.0.1",
		Port:            port,
		ShutdownTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/print-param?param=hello", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
