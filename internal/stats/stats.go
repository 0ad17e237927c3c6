package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// AggregatedName labels the entry summing every request.
const AggregatedName = "Aggregated"

// Entry holds the counters for one request name.
type Entry struct {
	Method string
	Name   string

	Requests uint64
	Failures uint64
	Bytes    uint64

	// Response times (microseconds)
	ResponseTime *SafeHistogram

	mu       sync.Mutex
	start    time.Time
	last     time.Time
	failures map[string]uint64
}

func newEntry(method, name string) *Entry {
	return &Entry{
		Method:       method,
		Name:         name,
		ResponseTime: NewSafeHistogram(),
		failures:     make(map[string]uint64),
	}
}

func (e *Entry) record(at time.Time, elapsed time.Duration, bytes int64, errMsg string) {
	atomic.AddUint64(&e.Requests, 1)
	if bytes > 0 {
		atomic.AddUint64(&e.Bytes, uint64(bytes))
	}
	e.ResponseTime.Record(elapsed)

	e.mu.Lock()
	if e.start.IsZero() || at.Before(e.start) {
		e.start = at
	}
	if at.After(e.last) {
		e.last = at
	}
	if errMsg != "" {
		e.failures[errMsg]++
	}
	e.mu.Unlock()

	if errMsg != "" {
		atomic.AddUint64(&e.Failures, 1)
	}
}

// FailRatio is the share of failed requests in [0, 1].
func (e *Entry) FailRatio() float64 {
	reqs := atomic.LoadUint64(&e.Requests)
	if reqs == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&e.Failures)) / float64(reqs)
}

// RPS is the average request rate between the first and last request.
func (e *Entry) RPS() float64 {
	e.mu.Lock()
	span := e.last.Sub(e.start).Seconds()
	e.mu.Unlock()

	reqs := atomic.LoadUint64(&e.Requests)
	if span <= 0 {
		return float64(reqs)
	}
	return float64(reqs) / span
}

// FailureCounts returns a copy of the per-message failure counts.
func (e *Entry) FailureCounts() map[string]uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]uint64, len(e.failures))
	for k, v := range e.failures {
		out[k] = v
	}
	return out
}

// Stats holds real-time aggregated metrics, grouped by request name.
type Stats struct {
	Total *Entry

	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewStats() *Stats {
	return &Stats{
		Total:   newEntry("", AggregatedName),
		entries: make(map[string]*Entry),
	}
}

// Record adds one request outcome. A nil err counts as a success.
func (s *Stats) Record(method, name string, elapsed time.Duration, bytes int64, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	now := time.Now()

	s.entry(method, name).record(now, elapsed, bytes, errMsg)
	s.Total.record(now, elapsed, bytes, errMsg)
}

func (s *Stats) entry(method, name string) *Entry {
	key := method + " " + name

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[key]; ok {
		return e
	}
	e = newEntry(method, name)
	s.entries[key] = e
	return e
}

// Entries returns the per-name entries ordered by name, then method.
func (s *Stats) Entries() []*Entry {
	s.mu.RLock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Lookup returns the entry for method and name, if any request was recorded.
func (s *Stats) Lookup(method, name string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[method+" "+name]
	return e, ok
}

// ErrorRate is the aggregated failure percentage.
func (s *Stats) ErrorRate() float64 {
	return s.Total.FailRatio() * 100
}
