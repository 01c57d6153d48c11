// Package report formats benchmark results into markdown tables, JSON
// and HTML charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/weiihann/sortbench/harness"
	"github.com/weiihann/sortbench/workload"
)

// Generate writes a markdown table per month followed by the per-day
// averages across months.
func Generate(w io.Writer, results harness.Results) error {
	if len(results.Months) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	for _, m := range results.Months {
		fmt.Fprintf(w, "### %s\n\n", m.Key())
		fmt.Fprintln(w, "| Day | Size | Insertion | Merge | Ratio |")
		fmt.Fprintln(w, "|-----|------|-----------|-------|-------|")

		for i := 0; i < m.Len(); i++ {
			rec := m.Record(i)

			fmt.Fprintf(w, "| %s | %d | %s | %s | %s |\n",
				rec.Day,
				rec.Size,
				formatDuration(rec.Insertion),
				formatDuration(rec.Merge),
				formatRatio(rec.Insertion, rec.Merge),
			)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "### Average over %d months\n\n", len(results.Months))
	fmt.Fprintln(w, "| Day | Size | Insertion | Merge | Ratio |")
	fmt.Fprintln(w, "|-----|------|-----------|-------|-------|")

	for _, p := range Average(results) {
		fmt.Fprintf(w, "| %s | %.1f | %s | %s | %s |\n",
			workload.DayKey(p.Day),
			p.Size,
			formatDuration(p.Insertion),
			formatDuration(p.Merge),
			formatRatio(p.Insertion, p.Merge),
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results harness.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

// AveragePoint is the mean of every month's observation for one day.
type AveragePoint struct {
	Day       int
	Months    int
	Size      float64
	Insertion time.Duration
	Merge     time.Duration
}

// Average groups the records of all months by day number and returns
// their means in ascending day order. A day only averages over the
// months that contain it. Records whose day key cannot be parsed are
// skipped.
func Average(results harness.Results) []AveragePoint {
	type sums struct {
		n         int
		size      int
		insertion time.Duration
		merge     time.Duration
	}

	byDay := make(map[int]*sums)

	for _, m := range results.Months {
		for i := 0; i < m.Len(); i++ {
			rec := m.Record(i)

			day, err := workload.ParseKey(rec.Day)
			if err != nil {
				continue
			}

			s, ok := byDay[day]
			if !ok {
				s = &sums{}
				byDay[day] = s
			}

			s.n++
			s.size += rec.Size
			s.insertion += rec.Insertion
			s.merge += rec.Merge
		}
	}

	points := make([]AveragePoint, 0, len(byDay))

	for day, s := range byDay {
		points = append(points, AveragePoint{
			Day:       day,
			Months:    s.n,
			Size:      float64(s.size) / float64(s.n),
			Insertion: s.insertion / time.Duration(s.n),
			Merge:     s.merge / time.Duration(s.n),
		})
	}

	slices.SortFunc(points, func(a, b AveragePoint) int { return a.Day - b.Day })

	return points
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatRatio(insertion, merge time.Duration) string {
	if merge <= 0 {
		return "-"
	}

	return fmt.Sprintf("%.2fx", float64(insertion)/float64(merge))
}
