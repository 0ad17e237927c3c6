package worker

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/myzhan/boomer"

	"paramload/internal/scenario"
)

const requestType = "GET"

// Recorder receives request outcomes; *boomer.Boomer satisfies it.
type Recorder interface {
	RecordSuccess(requestType, name string, responseTime int64, responseLength int64)
	RecordFailure(requestType, name string, responseTime int64, exception string)
}

// Client is a scenario.Client reporting to a locust master through boomer.
type Client struct {
	Host     string
	HTTP     *http.Client
	Recorder Recorder
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, name string) {
	target := strings.TrimRight(c.Host, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	n, failure := c.do(ctx, target)
	elapsed := time.Since(start).Milliseconds()

	if failure != "" {
		c.Recorder.RecordFailure(requestType, name, elapsed, failure)
		return
	}
	c.Recorder.RecordSuccess(requestType, name, elapsed, n)
}

func (c *Client) do(ctx context.Context, target string) (int64, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err.Error()
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return n, resp.Status
	}
	if err != nil {
		return n, "read body: " + err.Error()
	}
	return n, ""
}

// Tasks converts the user's tasks into boomer tasks bound to c. Boomer runs
// a client's tasks back to back, so each task first pauses for the user's
// wait time, then acts.
func Tasks(ctx context.Context, u scenario.User, c scenario.Client) []*boomer.Task {
	tasks := make([]*boomer.Task, 0, len(u.Tasks))
	for _, t := range u.Tasks {
		t := t
		tasks = append(tasks, &boomer.Task{
			Name:   t.Name,
			Weight: t.Weight,
			Fn: func() {
				if !u.Pause(ctx) {
					return
				}
				t.Fn(ctx, c)
			},
		})
	}
	return tasks
}

type Config struct {
	MasterHost string
	MasterPort int
	TargetHost string
	Timeout    time.Duration
	Insecure   bool
}

// Run connects to the master and executes u's tasks until ctx is done.
func Run(ctx context.Context, logger *slog.Logger, cfg Config, u scenario.User) {
	b := boomer.NewBoomer(cfg.MasterHost, cfg.MasterPort)

	t := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		Host:     cfg.TargetHost,
		HTTP:     &http.Client{Timeout: cfg.Timeout, Transport: t},
		Recorder: b,
	}

	logger.Info("connecting to locust master",
		slog.String("master", cfg.MasterHost),
		slog.Int("port", cfg.MasterPort),
		slog.String("target", cfg.TargetHost),
	)
	b.Run(Tasks(ctx, u, c)...)

	<-ctx.Done()
	logger.Info("worker stopping")
	b.Quit()
}
