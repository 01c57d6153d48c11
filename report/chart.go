package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/weiihann/sortbench/harness"
)

// RenderCharts writes an HTML page to w with one line chart per month
// (time against array size for both algorithms) and a final chart of
// the per-day averages.
func RenderCharts(w io.Writer, results harness.Results) error {
	if len(results.Months) == 0 {
		return fmt.Errorf("no results to chart")
	}

	page := components.NewPage()
	page.PageTitle = "Sorting benchmark"

	for _, m := range results.Months {
		sizes := make([]string, len(m.Sizes))
		for i, s := range m.Sizes {
			sizes[i] = strconv.Itoa(s)
		}

		page.AddCharts(lineChart(
			fmt.Sprintf("Benchmark: Month %d", m.Month),
			"Array size",
			sizes, m.InsertionTimes, m.MergeTimes,
		))
	}

	avg := Average(results)

	sizes := make([]string, len(avg))
	insertion := make([]float64, len(avg))
	merge := make([]float64, len(avg))

	for i, p := range avg {
		sizes[i] = strconv.FormatFloat(p.Size, 'f', 1, 64)
		insertion[i] = p.Insertion.Seconds()
		merge[i] = p.Merge.Seconds()
	}

	page.AddCharts(lineChart(
		fmt.Sprintf("Average over %d months", len(results.Months)),
		"Average array size",
		sizes, insertion, merge,
	))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	return nil
}

func lineChart(title, xName string, sizes []string, insertion, merge []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time (s)"}),
	)

	line.SetXAxis(sizes).
		AddSeries("Insertion sort", lineData(insertion)).
		AddSeries("Merge sort", lineData(merge))

	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}

	return items
}
