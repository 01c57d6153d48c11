package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/sortbench/harness"
)

func sampleResults() harness.Results {
	m1 := harness.MonthResult{Month: 1}
	m1.Add(harness.Record{Day: "day_1", Size: 50, Insertion: 2 * time.Millisecond, Merge: time.Millisecond})
	m1.Add(harness.Record{Day: "day_2", Size: 52, Insertion: 4 * time.Millisecond, Merge: time.Millisecond})

	m2 := harness.MonthResult{Month: 2}
	m2.Add(harness.Record{Day: "day_1", Size: 50, Insertion: 4 * time.Millisecond, Merge: 3 * time.Millisecond})
	m2.Add(harness.Record{Day: "day_2", Size: 54, Insertion: 6 * time.Millisecond, Merge: 3 * time.Millisecond})
	m2.Add(harness.Record{Day: "day_3", Size: 56, Insertion: 8 * time.Millisecond, Merge: 0})

	return harness.Results{Months: []harness.MonthResult{m1, m2}}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, sampleResults()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"## Benchmark Results",
		"### month_1",
		"### month_2",
		"| day_1 | 50 | 2.00ms | 1.00ms | 2.00x |",
		"| day_3 | 56 | 8.00ms | 0µs | - |",
		"### Average over 2 months",
		"| day_1 | 50.0 | 3.00ms | 2.00ms | 1.50x |",
		"| day_3 | 56.0 | 8.00ms | 0µs | - |",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}

	if strings.Index(output, "### month_1") > strings.Index(output, "### month_2") {
		t.Error("months out of order")
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, harness.Results{})
	if err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateJSON(t *testing.T) {
	results := sampleResults()

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, results); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"month_1\": {") {
		t.Errorf("output is not indented:\n%s", buf.String())
	}

	parsed, err := harness.ReadResults(&buf)
	if err != nil {
		t.Fatalf("output is not valid results JSON: %v", err)
	}

	if len(parsed.Months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(parsed.Months))
	}
	if got := parsed.Months[1].Sizes; len(got) != 3 || got[2] != 56 {
		t.Errorf("month_2 sizes = %v", got)
	}
}

func TestAverage(t *testing.T) {
	points := Average(sampleResults())

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	tests := []struct {
		day       int
		months    int
		size      float64
		insertion time.Duration
		merge     time.Duration
	}{
		{1, 2, 50, 3 * time.Millisecond, 2 * time.Millisecond},
		{2, 2, 53, 5 * time.Millisecond, 2 * time.Millisecond},
		{3, 1, 56, 8 * time.Millisecond, 0},
	}

	for i, tt := range tests {
		p := points[i]
		if p.Day != tt.day || p.Months != tt.months || p.Size != tt.size {
			t.Errorf("point %d = %+v, want day %d months %d size %v",
				i, p, tt.day, tt.months, tt.size)
		}
		if p.Insertion != tt.insertion || p.Merge != tt.merge {
			t.Errorf("point %d times = %v/%v, want %v/%v",
				i, p.Insertion, p.Merge, tt.insertion, tt.merge)
		}
	}
}

func TestAverageSkipsBadKeys(t *testing.T) {
	m := harness.MonthResult{Month: 1}
	m.Add(harness.Record{Day: "yesterday", Size: 3})
	m.Add(harness.Record{Day: "day_1", Size: 5})

	points := Average(harness.Results{Months: []harness.MonthResult{m}})
	if len(points) != 1 || points[0].Size != 5 {
		t.Errorf("points = %+v", points)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "0µs"},
		{500 * time.Microsecond, "500µs"},
		{999 * time.Microsecond, "999µs"},
		{1500 * time.Microsecond, "1.50ms"},
		{999 * time.Millisecond, "999.00ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
		{60 * time.Second, "60.00s"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.input)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		insertion, merge time.Duration
		want             string
	}{
		{2 * time.Millisecond, time.Millisecond, "2.00x"},
		{time.Millisecond, 4 * time.Millisecond, "0.25x"},
		{time.Millisecond, 0, "-"},
	}

	for _, tt := range tests {
		if got := formatRatio(tt.insertion, tt.merge); got != tt.want {
			t.Errorf("formatRatio(%v, %v) = %q, want %q",
				tt.insertion, tt.merge, got, tt.want)
		}
	}
}
