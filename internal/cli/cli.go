package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"paramload/internal/report"
	"paramload/internal/runner"
)

// Start runs r headless, printing a progress line until the run ends, then the summary.
func Start(ctx context.Context, w io.Writer, r *runner.Runner) time.Duration {
	printHeader(w, r.Cfg)

	done := make(chan struct{})
	startTime := time.Now()
	go func() {
		r.Run(ctx)
		close(done)
	}()

	ticker := time.NewTicker(200 * time.Millisecond) // Faster updates for progress bar
	defer ticker.Stop()

	for {
		select {
		case <-r.Updates:
			// Drain updates
		case <-done:
			elapsed := time.Since(startTime)
			printSummary(w, report.Summarize(r.Stats), elapsed)
			return elapsed
		case <-ticker.C:
			printProgress(w, r, time.Since(startTime))
		}
	}
}

func printHeader(w io.Writer, cfg runner.Config) {
	fmt.Fprintf(w, "\n🚀 STARTING PARAMLOAD LOAD TEST\n")
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Target Host : %s\n", cfg.Host)
	fmt.Fprintf(w, "Users       : %d (spawn rate %.2f/s)\n", cfg.Users, cfg.SpawnRate)
	fmt.Fprintf(w, "Wait        : %s - %s\n", cfg.MinWait, cfg.MaxWait)
	fmt.Fprintf(w, "Run Time    : %s\n", runTimeLabel(cfg.RunTime))
	fmt.Fprintf(w, "Timeout     : %s\n", cfg.Timeout)
	fmt.Fprintf(w, "======================================================================\n\n")
}

func runTimeLabel(d time.Duration) string {
	if d <= 0 {
		return "until interrupted"
	}
	return d.String()
}

func printProgress(w io.Writer, r *runner.Runner, elapsed time.Duration) {
	s := r.Snapshot()
	rps := 0.0
	if elapsed.Seconds() > 0 {
		rps = float64(s.Requests) / elapsed.Seconds()
	}

	pct := 0.0
	if r.Cfg.RunTime > 0 {
		pct = elapsed.Seconds() / r.Cfg.RunTime.Seconds()
		if pct > 1.0 {
			pct = 1.0
		}
	}

	fmt.Fprintf(w, "\r%s %3.0f%% | %s | Users: %3d | Inf: %3d | RPS: %.1f | Reqs: %d | Fail: %d",
		progressBar(pct, 20), pct*100,
		elapsed.Round(time.Second),
		s.Users,
		s.Inflight,
		rps,
		s.Requests,
		s.Failures,
	)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

func printSummary(w io.Writer, sum report.Summary, totalTime time.Duration) {
	fmt.Fprintf(w, "\n\n📊 LOAD TEST RESULTS (%s)\n", totalTime.Round(time.Second))
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "%-6s %-28s %8s %8s %8s %8s %8s %8s\n",
		"Type", "Name", "# reqs", "# fails", "Avg", "P50", "P99", "req/s")

	for _, row := range append(append([]report.Row{}, sum.Rows...), sum.Aggregated) {
		fmt.Fprintf(w, "%-6s %-28s %8d %8d %8.0f %8.0f %8.0f %8.2f\n",
			row.Method, row.Name, row.Requests, row.Failures,
			row.AvgMs, row.P50Ms, row.P99Ms, row.RPS)
	}

	if errs := sum.Errors(); len(errs) > 0 {
		fmt.Fprintf(w, "\n❌ FAILURE SUMMARY\n")
		for _, e := range errs {
			fmt.Fprintf(w, "   %d x %s %s: %s\n", e.Count, e.Method, e.Name, e.Message)
		}
	}
	fmt.Fprintf(w, "======================================================================\n")
}
