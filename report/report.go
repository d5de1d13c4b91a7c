// Package report formats a benchmark result for stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/bencher/harness"
)

// Generate writes the one-line report for res: the label followed by the
// elapsed time in whole milliseconds.
func Generate(w io.Writer, res harness.Result) error {
	if res.Label == "" {
		return fmt.Errorf("result has no label")
	}

	_, err := fmt.Fprintf(w, "%s %d millis\n", res.Label, res.ElapsedMs)

	return err
}

// GenerateDetail writes the report line followed by the allocation
// counters, for interactive use.
func GenerateDetail(w io.Writer, res harness.Result) error {
	if err := Generate(w, res); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "  wall %s, allocated %s in %d objects\n",
		formatMs(res.ElapsedMs), formatBytes(res.AllocBytes), res.Mallocs)

	return err
}

// GenerateJSON writes res as a JSON object to w.
func GenerateJSON(w io.Writer, res harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
