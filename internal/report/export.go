package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"paramload/internal/runner"
)

// WriteCSV exports results to a JMeter-compatible CSV file.
// Schema: timeStamp,elapsed,label,responseCode,responseMessage,threadName,success,failureMessage,bytes,URL
func WriteCSV(results []runner.Result, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"timeStamp", "elapsed", "label", "responseCode", "responseMessage",
		"threadName", "success", "failureMessage", "bytes", "URL",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{
			strconv.FormatInt(res.TimeStamp.UnixMilli(), 10),
			strconv.FormatInt(res.Latency.Milliseconds(), 10),
			res.Name, // grouped label, not the concrete URL
			strconv.Itoa(res.Status),
			statusText(res.Status),
			"User-" + res.UserID,
			strconv.FormatBool(res.Success),
			res.Error,
			strconv.FormatInt(res.Bytes, 10),
			res.URL,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteJSON exports results to a JSON file.
func WriteJSON(results []runner.Result, filename string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// WriteStatsCSV writes one row per request name followed by the aggregate,
// using the column layout of locust's stats CSV.
func WriteStatsCSV(sum Summary, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Type", "Name", "Request Count", "Failure Count",
		"Median Response Time", "Average Response Time", "Min Response Time", "Max Response Time",
		"Average Content Size", "Requests/s", "50%", "90%", "95%", "99%",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rows := append(append([]Row{}, sum.Rows...), sum.Aggregated)
	for _, r := range rows {
		record := []string{
			r.Method,
			r.Name,
			strconv.FormatUint(r.Requests, 10),
			strconv.FormatUint(r.Failures, 10),
			ms(r.P50Ms),
			ms(r.AvgMs),
			ms(r.MinMs),
			ms(r.MaxMs),
			fmt.Sprintf("%.2f", r.AvgBytes),
			fmt.Sprintf("%.2f", r.RPS),
			ms(r.P50Ms),
			ms(r.P90Ms),
			ms(r.P95Ms),
			ms(r.P99Ms),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteSummaryJSON writes sum as indented JSON.
func WriteSummaryJSON(sum Summary, filename string) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// WriteAll writes every report next to prefix and returns the paths written.
func WriteAll(prefix string, results []runner.Result, sum Summary) ([]string, error) {
	files := []struct {
		path  string
		write func(string) error
	}{
		{prefix + ".csv", func(p string) error { return WriteCSV(results, p) }},
		{prefix + ".json", func(p string) error { return WriteJSON(results, p) }},
		{prefix + "_stats.csv", func(p string) error { return WriteStatsCSV(sum, p) }},
		{prefix + "_summary.json", func(p string) error { return WriteSummaryJSON(sum, p) }},
	}

	var written []string
	for _, f := range files {
		if err := f.write(f.path); err != nil {
			return written, fmt.Errorf("write %s: %w", f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

func ms(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func statusText(code int) string {
	if code == 0 {
		return "Connection Error"
	}
	return http.StatusText(code)
}
