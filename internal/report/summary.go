package report

import (
	"sort"
	"sync/atomic"

	"paramload/internal/stats"
)

// Row is the summary of one request name.
type Row struct {
	Method   string            `json:"method"`
	Name     string            `json:"name"`
	Requests uint64            `json:"requests"`
	Failures uint64            `json:"failures"`
	AvgMs    float64           `json:"avg_ms"`
	MinMs    float64           `json:"min_ms"`
	MaxMs    float64           `json:"max_ms"`
	P50Ms    float64           `json:"p50_ms"`
	P90Ms    float64           `json:"p90_ms"`
	P95Ms    float64           `json:"p95_ms"`
	P99Ms    float64           `json:"p99_ms"`
	AvgBytes float64           `json:"avg_bytes"`
	RPS      float64           `json:"rps"`
	Errors   map[string]uint64 `json:"errors,omitempty"`
}

type Summary struct {
	Rows       []Row `json:"rows"`
	Aggregated Row   `json:"aggregated"`
}

// Summarize freezes s into rows, one per request name plus the aggregate.
func Summarize(s *stats.Stats) Summary {
	var sum Summary
	for _, e := range s.Entries() {
		sum.Rows = append(sum.Rows, row(e))
	}
	sum.Aggregated = row(s.Total)
	return sum
}

func row(e *stats.Entry) Row {
	reqs := atomic.LoadUint64(&e.Requests)
	bytes := atomic.LoadUint64(&e.Bytes)

	r := Row{
		Method:   e.Method,
		Name:     e.Name,
		Requests: reqs,
		Failures: atomic.LoadUint64(&e.Failures),
		AvgMs:    e.ResponseTime.MeanMs(),
		MinMs:    e.ResponseTime.MinMs(),
		MaxMs:    e.ResponseTime.MaxMs(),
		P50Ms:    e.ResponseTime.QuantileMs(50),
		P90Ms:    e.ResponseTime.QuantileMs(90),
		P95Ms:    e.ResponseTime.QuantileMs(95),
		P99Ms:    e.ResponseTime.QuantileMs(99),
		RPS:      e.RPS(),
		Errors:   e.FailureCounts(),
	}
	if reqs > 0 {
		r.AvgBytes = float64(bytes) / float64(reqs)
	}
	if len(r.Errors) == 0 {
		r.Errors = nil
	}
	return r
}

// ErrorLine is one distinct failure message and how often it happened.
type ErrorLine struct {
	Method  string
	Name    string
	Message string
	Count   uint64
}

// Errors lists failures across all rows, most frequent first.
func (s Summary) Errors() []ErrorLine {
	var out []ErrorLine
	for _, r := range s.Rows {
		for msg, n := range r.Errors {
			out = append(out, ErrorLine{Method: r.Method, Name: r.Name, Message: msg, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	return out
}
