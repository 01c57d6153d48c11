// Package harness times the sort primitives against every array of a
// generated dataset and collects the observations per month.
package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/weiihann/sortbench/workload"
)

// Record is a single timing observation for one day's array.
type Record struct {
	Day       string
	Size      int
	Insertion time.Duration
	Merge     time.Duration
}

// MonthResult holds the records of one month as parallel columns, in
// ascending day order.
type MonthResult struct {
	Month          int       `json:"-"`
	Days           []string  `json:"days"`
	Sizes          []int     `json:"sizes"`
	InsertionTimes []float64 `json:"insertion_times"`
	MergeTimes     []float64 `json:"merge_times"`
}

// Add appends rec to the columns of m.
func (m *MonthResult) Add(rec Record) {
	m.Days = append(m.Days, rec.Day)
	m.Sizes = append(m.Sizes, rec.Size)
	m.InsertionTimes = append(m.InsertionTimes, rec.Insertion.Seconds())
	m.MergeTimes = append(m.MergeTimes, rec.Merge.Seconds())
}

// Len returns the number of records in m.
func (m MonthResult) Len() int {
	return len(m.Days)
}

// Record returns the i-th record of m.
func (m MonthResult) Record(i int) Record {
	return Record{
		Day:       m.Days[i],
		Size:      m.Sizes[i],
		Insertion: seconds(m.InsertionTimes[i]),
		Merge:     seconds(m.MergeTimes[i]),
	}
}

// Results is the harness output, months in ascending order.
//
// It encodes to JSON as {"month_1": {"days": [...], "sizes": [...],
// "insertion_times": [...], "merge_times": [...]}, ...}.
type Results struct {
	Months []MonthResult
}

// Key returns the textual key of m, e.g. "month_2".
func (m MonthResult) Key() string {
	return workload.MonthKey(m.Month)
}

// MarshalJSON implements json.Marshaler.
func (r Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, m := range r.Months {
		if i > 0 {
			buf.WriteByte(',')
		}

		raw, err := json.Marshal(m.nonNil())
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Key(), err)
		}

		fmt.Fprintf(&buf, "%q:", m.Key())
		buf.Write(raw)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Months are ordered by the
// number in their key.
func (r *Results) UnmarshalJSON(data []byte) error {
	var m map[string]MonthResult
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	months := make([]MonthResult, 0, len(m))
	seen := make(map[int]string, len(m))

	for key, res := range m {
		idx, err := workload.ParseKey(key)
		if err != nil {
			return err
		}

		if prev, ok := seen[idx]; ok {
			return fmt.Errorf("%w: %q and %q both name month %d",
				workload.ErrInvalidKey, prev, key, idx)
		}

		seen[idx] = key

		n := len(res.Days)
		if len(res.Sizes) != n || len(res.InsertionTimes) != n || len(res.MergeTimes) != n {
			return fmt.Errorf("%s: columns have different lengths", key)
		}

		res.Month = idx
		months = append(months, res)
	}

	slices.SortFunc(months, func(a, b MonthResult) int { return a.Month - b.Month })
	r.Months = months

	return nil
}

// ReadResults decodes results previously encoded as JSON.
func ReadResults(r io.Reader) (Results, error) {
	var res Results
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Results{}, fmt.Errorf("decode JSON: %w", err)
	}

	return res, nil
}

func (m MonthResult) nonNil() MonthResult {
	if m.Days == nil {
		m.Days = []string{}
	}
	if m.Sizes == nil {
		m.Sizes = []int{}
	}
	if m.InsertionTimes == nil {
		m.InsertionTimes = []float64{}
	}
	if m.MergeTimes == nil {
		m.MergeTimes = []float64{}
	}

	return m
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
