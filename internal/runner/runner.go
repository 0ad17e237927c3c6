package runner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"paramload/internal/scenario"
	"paramload/internal/stats"

	"github.com/google/uuid"
)

// DefaultMaxResults bounds the per-request log; later requests still reach Stats.
const DefaultMaxResults = 1 << 20

// StatsSnapshot is sent over the channel
type StatsSnapshot struct {
	Requests uint64
	Failures uint64
	Bytes    uint64
	Inflight int64
	Users    int64

	// Pre-calculated percentiles for the UI (cheap copy)
	P50Ms float64
	P90Ms float64
	P99Ms float64
	MaxMs float64
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot

type Runner struct {
	Cfg    Config
	Stats  *stats.Stats
	Client *http.Client
	User   scenario.User

	Results    []Result
	MaxResults int
	Dropped    uint64 // results not kept because MaxResults was reached
	mu         sync.Mutex

	inflight int64
	users    int64

	// Event Channel
	Updates StatsUpdateChan
}

func NewRunner(cfg Config, updates StatsUpdateChan) *Runner {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000
	if cfg.Insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: t,
	}

	if updates == nil {
		// Avoid nil panics if not provided
		updates = make(StatsUpdateChan, 10)
	}

	return &Runner{
		Cfg:        cfg,
		Stats:      stats.NewStats(),
		Client:     client,
		User:       scenario.NewPrintParamUser(scenario.Between(cfg.MinWait, cfg.MaxWait), cfg.ParamLength),
		MaxResults: DefaultMaxResults,
		Updates:    updates,
	}
}

// StartTickLoop starts a goroutine that pushes stats updates
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

func (r *Runner) Snapshot() StatsSnapshot {
	total := r.Stats.Total
	return StatsSnapshot{
		Requests: atomic.LoadUint64(&total.Requests),
		Failures: atomic.LoadUint64(&total.Failures),
		Bytes:    atomic.LoadUint64(&total.Bytes),
		Inflight: atomic.LoadInt64(&r.inflight),
		Users:    atomic.LoadInt64(&r.users),
		P50Ms:    total.ResponseTime.QuantileMs(50),
		P90Ms:    total.ResponseTime.QuantileMs(90),
		P99Ms:    total.ResponseTime.QuantileMs(99),
		MaxMs:    total.ResponseTime.MaxMs(),
	}
}

func (r *Runner) sendUpdate() {
	// Non-blocking send
	select {
	case r.Updates <- r.Snapshot():
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

// Run spawns the configured users at the spawn rate and blocks until every
// user has stopped, either because ctx is done or RunTime has elapsed.
func (r *Runner) Run(ctx context.Context) {
	if r.Cfg.RunTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Cfg.RunTime)
		defer cancel()
	}

	tickCtx, stopTicks := context.WithCancel(ctx)
	r.StartTickLoop(tickCtx, 200*time.Millisecond)

	var wg sync.WaitGroup
	var interval time.Duration
	if r.Cfg.SpawnRate > 0 {
		interval = time.Duration(float64(time.Second) / r.Cfg.SpawnRate)
	}

	for i := 0; i < r.Cfg.Users; i++ {
		if i > 0 && interval > 0 && !scenario.Sleep(ctx, interval) {
			break
		}

		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			r.runUser(ctx, userID)
		}(uuid.NewString())
	}

	wg.Wait()
	stopTicks()
	r.sendUpdate()
}

// runUser is strictly sequential: wait, act, wait again.
func (r *Runner) runUser(ctx context.Context, userID string) {
	atomic.AddInt64(&r.users, 1)
	defer atomic.AddInt64(&r.users, -1)

	c := &httpClient{r: r, userID: userID}
	for {
		if !r.User.Pause(ctx) {
			return
		}
		task, ok := scenario.Pick(r.User.Tasks)
		if !ok {
			return
		}
		task.Fn(ctx, c)
	}
}

func (r *Runner) GetInflight() int64 {
	return atomic.LoadInt64(&r.inflight)
}

func (r *Runner) GetUsers() int64 {
	return atomic.LoadInt64(&r.users)
}

// ResultsCopy returns the per-request log collected so far.
func (r *Runner) ResultsCopy() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.Results))
	copy(out, r.Results)
	return out
}

func (r *Runner) addResult(res Result) {
	if r.Cfg.OutPrefix == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Results) >= r.MaxResults {
		r.Dropped++
		return
	}
	r.Results = append(r.Results, res)
}

// httpClient issues requests for one simulated user and records the outcome.
type httpClient struct {
	r      *Runner
	userID string
}

func (c *httpClient) Get(ctx context.Context, path string, query url.Values, name string) {
	target := strings.TrimRight(c.r.Cfg.Host, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	atomic.AddInt64(&c.r.inflight, 1)
	defer atomic.AddInt64(&c.r.inflight, -1)

	start := time.Now()
	status, n, err := c.do(ctx, target)
	elapsed := time.Since(start)

	// Requests cut short by the end of the run are not part of the results.
	if err != nil && ctx.Err() != nil {
		return
	}

	c.r.Stats.Record(http.MethodGet, name, elapsed, n, err)

	res := Result{
		TimeStamp: start,
		Latency:   elapsed,
		Method:    http.MethodGet,
		Name:      name,
		URL:       target,
		Status:    status,
		Success:   err == nil,
		Bytes:     n,
		UserID:    c.userID,
	}
	if err != nil {
		res.Error = err.Error()
	}
	c.r.addResult(res)
}

func (c *httpClient) do(ctx context.Context, target string) (int, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := c.r.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, n, &HTTPError{StatusCode: resp.StatusCode}
	}
	if err != nil {
		return resp.StatusCode, n, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, n, nil
}
