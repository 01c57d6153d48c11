package workload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned when a month or day key has no positive
// numeric suffix, or two keys share the same number.
var ErrInvalidKey = errors.New("invalid key")

// Dataset is the output of a generation run: months in ascending order.
//
// It encodes to JSON as {"month_1": {"day_1": [...], ...}, ...} with keys
// in numeric order.
type Dataset struct {
	Months []Month
}

// Month holds the days of one month. Index is 1-based.
type Month struct {
	Index int
	Days  []Day
}

// Day holds the array generated for one day. Index is 1-based.
type Day struct {
	Index  int
	Values []int
}

// MonthKey returns the textual key for month i, e.g. "month_3".
func MonthKey(i int) string {
	return "month_" + strconv.Itoa(i)
}

// DayKey returns the textual key for day i, e.g. "day_3".
func DayKey(i int) string {
	return "day_" + strconv.Itoa(i)
}

// ParseKey extracts the numeric suffix of a "<word>_<n>" key. Any word is
// accepted so files written with other prefixes still load.
func ParseKey(key string) (int, error) {
	idx := strings.LastIndexByte(key, '_')
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q has no _<n> suffix", ErrInvalidKey, key)
	}

	n, err := strconv.Atoi(key[idx+1:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q has no positive numeric suffix",
			ErrInvalidKey, key)
	}

	return n, nil
}

// FromMap builds a Dataset from the nested map form, ordering months and
// days by the numbers in their keys rather than by text.
func FromMap(m map[string]map[string][]int) (Dataset, error) {
	dataset := Dataset{Months: make([]Month, 0, len(m))}
	seenMonths := make(map[int]string, len(m))

	for monthKey, days := range m {
		mi, err := ParseKey(monthKey)
		if err != nil {
			return Dataset{}, err
		}

		if prev, ok := seenMonths[mi]; ok {
			return Dataset{}, fmt.Errorf("%w: %q and %q both name month %d",
				ErrInvalidKey, prev, monthKey, mi)
		}

		seenMonths[mi] = monthKey

		month := Month{Index: mi, Days: make([]Day, 0, len(days))}
		seenDays := make(map[int]string, len(days))

		for dayKey, values := range days {
			di, err := ParseKey(dayKey)
			if err != nil {
				return Dataset{}, fmt.Errorf("%s: %w", monthKey, err)
			}

			if prev, ok := seenDays[di]; ok {
				return Dataset{}, fmt.Errorf("%s: %w: %q and %q both name day %d",
					monthKey, ErrInvalidKey, prev, dayKey, di)
			}

			seenDays[di] = dayKey

			month.Days = append(month.Days, Day{Index: di, Values: slices.Clone(values)})
		}

		slices.SortFunc(month.Days, func(a, b Day) int { return a.Index - b.Index })
		dataset.Months = append(dataset.Months, month)
	}

	slices.SortFunc(dataset.Months, func(a, b Month) int { return a.Index - b.Index })

	return dataset, nil
}

// ToMap returns the nested map form of d.
func (d Dataset) ToMap() map[string]map[string][]int {
	out := make(map[string]map[string][]int, len(d.Months))

	for _, m := range d.Months {
		days := make(map[string][]int, len(m.Days))
		for _, day := range m.Days {
			days[DayKey(day.Index)] = slices.Clone(day.Values)
		}

		out[MonthKey(m.Index)] = days
	}

	return out
}

// MarshalJSON implements json.Marshaler.
func (d Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, m := range d.Months {
		if i > 0 {
			buf.WriteByte(',')
		}

		fmt.Fprintf(&buf, "%q:{", MonthKey(m.Index))

		for j, day := range m.Days {
			if j > 0 {
				buf.WriteByte(',')
			}

			values := day.Values
			if values == nil {
				values = []int{}
			}

			raw, err := json.Marshal(values)
			if err != nil {
				return nil, fmt.Errorf("encode %s/%s: %w",
					MonthKey(m.Index), DayKey(day.Index), err)
			}

			fmt.Fprintf(&buf, "%q:", DayKey(day.Index))
			buf.Write(raw)
		}

		buf.WriteByte('}')
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var m map[string]map[string][]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	parsed, err := FromMap(m)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Encode writes d to w as indented JSON.
func Encode(w io.Writer, d Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	return nil
}

// Decode reads a dataset written by Encode.
func Decode(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	return d, nil
}

// Summary contains statistics about a generated dataset.
type Summary struct {
	Months        int
	DaysPerMonth  int
	MinSize       int
	MaxSize       int
	TotalElements int
}

// Summarize computes a Summary for d. DaysPerMonth is taken from the
// first month.
func Summarize(d Dataset) Summary {
	var s Summary

	s.Months = len(d.Months)
	if s.Months == 0 {
		return s
	}

	s.DaysPerMonth = len(d.Months[0].Days)
	s.MinSize = -1

	for _, m := range d.Months {
		for _, day := range m.Days {
			n := len(day.Values)
			s.TotalElements += n

			if s.MinSize < 0 || n < s.MinSize {
				s.MinSize = n
			}
			if n > s.MaxSize {
				s.MaxSize = n
			}
		}
	}

	if s.MinSize < 0 {
		s.MinSize = 0
	}

	return s
}
