package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/weiihann/sortbench/sorting"
	"github.com/weiihann/sortbench/workload"
)

// ErrUnsorted is returned when a sort primitive produces a sequence that
// is not ascending, or the two primitives disagree on the same input.
var ErrUnsorted = errors.New("sort produced unsorted output")

// Runner times insertion sort and merge sort against a dataset.
type Runner struct {
	Logger *slog.Logger
	// Now is the clock used for timing. Defaults to time.Now.
	Now func() time.Time

	insertion func([]int) []int
	merge     func([]int) []int
}

// NewRunner creates a Runner that logs to logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		Logger: logger.With(slog.String("component", "harness")),
		Now:    time.Now,

		insertion: sorting.Insertion[int],
		merge:     sorting.Merge[int],
	}
}

// Run sorts every array in ds with both primitives and records the
// elapsed time of each. Months and days are visited in ascending index
// order regardless of their order in ds; a month or day index that
// appears twice is rejected with workload.ErrInvalidKey. The sort
// primitives return new slices, so both read the same unsorted array
// and ds is left untouched.
//
// ctx is checked between arrays; a cancelled run returns ctx.Err() and
// no results.
func (r *Runner) Run(ctx context.Context, ds workload.Dataset) (Results, error) {
	months := slices.Clone(ds.Months)
	slices.SortFunc(months, func(a, b workload.Month) int { return a.Index - b.Index })

	for i := 1; i < len(months); i++ {
		if months[i].Index == months[i-1].Index {
			return Results{}, fmt.Errorf("%w: %s appears twice",
				workload.ErrInvalidKey, workload.MonthKey(months[i].Index))
		}
	}

	results := Results{Months: make([]MonthResult, 0, len(months))}
	wallStart := r.now()

	for _, month := range months {
		days := slices.Clone(month.Days)
		slices.SortFunc(days, func(a, b workload.Day) int { return a.Index - b.Index })

		for i := 1; i < len(days); i++ {
			if days[i].Index == days[i-1].Index {
				return Results{}, fmt.Errorf("%w: %s/%s appears twice", workload.ErrInvalidKey,
					workload.MonthKey(month.Index), workload.DayKey(days[i].Index))
			}
		}

		res := MonthResult{Month: month.Index}

		for _, day := range days {
			if err := ctx.Err(); err != nil {
				return Results{}, err
			}

			rec, err := r.measure(day)
			if err != nil {
				return Results{}, fmt.Errorf("%s/%s: %w",
					workload.MonthKey(month.Index), workload.DayKey(day.Index), err)
			}

			res.Add(rec)
		}

		r.Logger.DebugContext(ctx, "month benchmarked",
			slog.String("month", res.Key()),
			slog.Int("days", res.Len()),
		)

		results.Months = append(results.Months, res)
	}

	r.Logger.InfoContext(ctx, "benchmark finished",
		slog.Int("months", len(results.Months)),
		slog.Duration("wall_time", r.now().Sub(wallStart)),
	)

	return results, nil
}

func (r *Runner) measure(day workload.Day) (Record, error) {
	insertion, merge := r.insertion, r.merge
	if insertion == nil {
		insertion = sorting.Insertion[int]
	}
	if merge == nil {
		merge = sorting.Merge[int]
	}

	insSorted, insElapsed := r.timeSort(insertion, day.Values)
	mergeSorted, mergeElapsed := r.timeSort(merge, day.Values)

	if !slices.IsSorted(insSorted) {
		return Record{}, fmt.Errorf("insertion sort: %w", ErrUnsorted)
	}

	if !slices.Equal(insSorted, mergeSorted) {
		return Record{}, fmt.Errorf("merge sort disagrees with insertion sort: %w",
			ErrUnsorted)
	}

	return Record{
		Day:       workload.DayKey(day.Index),
		Size:      len(day.Values),
		Insertion: insElapsed,
		Merge:     mergeElapsed,
	}, nil
}

func (r *Runner) timeSort(sort func([]int) []int, input []int) ([]int, time.Duration) {
	start := r.now()
	out := sort(input)

	return out, r.now().Sub(start)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}
