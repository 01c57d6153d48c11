// Package workload generates the synthetic datasets benchmarked by
// sortbench: for every month a sequence of days, each holding an integer
// array that grows day over day.
package workload

import (
	"errors"
	"fmt"
	"math"
	mrand "math/rand"
)

// ErrInvalidArgument is returned for negative counts and inconsistent
// value or growth bounds.
var ErrInvalidArgument = errors.New("invalid argument")

// Mode selects how arrays behave at month boundaries.
type Mode string

const (
	// ModeReset draws a fresh array on day 1 of every month.
	ModeReset Mode = "reset"
	// ModeContinuous draws a fresh array only on month 1, day 1. Every
	// later day, including day 1 of later months, grows the previous
	// day's array.
	ModeContinuous Mode = "continuous"
)

// Config controls dataset generation.
type Config struct {
	Months     int     `yaml:"months"`
	Days       int     `yaml:"days"`
	StartCount int     `yaml:"start_count"`
	MinValue   int     `yaml:"min_value"`
	MaxValue   int     `yaml:"max_value"`
	MinGrowth  float64 `yaml:"min_growth"`
	MaxGrowth  float64 `yaml:"max_growth"`
	Mode       Mode    `yaml:"mode"`
	Seed       int64   `yaml:"seed"`
}

// DefaultConfig returns the batch defaults: 10 months of 14 days starting
// from 50 values in [1, 50), growing 1-5% a day.
func DefaultConfig() Config {
	return Config{
		Months:     10,
		Days:       14,
		StartCount: 50,
		MinValue:   1,
		MaxValue:   50,
		MinGrowth:  0.01,
		MaxGrowth:  0.05,
		Mode:       ModeReset,
	}
}

// Validate reports whether cfg can be generated. Zero counts are valid
// and produce an empty dataset.
func (c Config) Validate() error {
	switch {
	case c.Months < 0:
		return fmt.Errorf("%w: months must not be negative, got %d",
			ErrInvalidArgument, c.Months)
	case c.Days < 0:
		return fmt.Errorf("%w: days must not be negative, got %d",
			ErrInvalidArgument, c.Days)
	case c.StartCount < 0:
		return fmt.Errorf("%w: start count must not be negative, got %d",
			ErrInvalidArgument, c.StartCount)
	case c.MinValue >= c.MaxValue:
		return fmt.Errorf("%w: value range [%d, %d) is empty",
			ErrInvalidArgument, c.MinValue, c.MaxValue)
	case c.MaxValue-c.MinValue <= 0:
		return fmt.Errorf("%w: value range [%d, %d) is wider than int",
			ErrInvalidArgument, c.MinValue, c.MaxValue)
	case c.MinGrowth < 0 || c.MaxGrowth < c.MinGrowth:
		return fmt.Errorf("%w: growth range [%g, %g) is invalid",
			ErrInvalidArgument, c.MinGrowth, c.MaxGrowth)
	}

	switch c.Mode {
	case "", ModeReset, ModeContinuous:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidArgument, c.Mode)
	}

	return nil
}

// Generator produces deterministic datasets from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator seeded from cfg.Seed.
func NewGenerator(cfg Config) *Generator {
	return NewGeneratorWithRand(cfg, mrand.New(mrand.NewSource(cfg.Seed)))
}

// NewGeneratorWithRand creates a Generator drawing from rng instead of
// a source seeded from cfg.Seed.
func NewGeneratorWithRand(cfg Config, rng *mrand.Rand) *Generator {
	if cfg.Mode == "" {
		cfg.Mode = ModeReset
	}

	return &Generator{cfg: cfg, rng: rng}
}

// Generate builds a dataset of cfg.Months months with cfg.Days days each.
//
// On a fresh day the array is cfg.StartCount values drawn uniformly from
// [MinValue, MaxValue). On every other day a growth rate r is drawn from
// [MinGrowth, MaxGrowth), the target length is floor(len*(1+r)) but at
// least len+1, and the missing values are appended. Each day stores its
// own copy of the array.
func (g *Generator) Generate() (Dataset, error) {
	if err := g.cfg.Validate(); err != nil {
		return Dataset{}, err
	}

	dataset := Dataset{Months: make([]Month, 0, g.cfg.Months)}

	var current []int

	for m := 1; m <= g.cfg.Months; m++ {
		month := Month{Index: m, Days: make([]Day, 0, g.cfg.Days)}

		for d := 1; d <= g.cfg.Days; d++ {
			if g.fresh(m, d) {
				current = g.draw(make([]int, 0, g.cfg.StartCount), g.cfg.StartCount)
			} else {
				current = g.grow(current)
			}

			snapshot := make([]int, len(current))
			copy(snapshot, current)

			month.Days = append(month.Days, Day{Index: d, Values: snapshot})
		}

		dataset.Months = append(dataset.Months, month)
	}

	return dataset, nil
}

// Generate is a shorthand for generating a dataset with the default value
// and growth bounds.
func Generate(months, days, startCount int, seed int64) (Dataset, error) {
	cfg := DefaultConfig()
	cfg.Months = months
	cfg.Days = days
	cfg.StartCount = startCount
	cfg.Seed = seed

	return NewGenerator(cfg).Generate()
}

// Projection is an upper bound on the dataset a Config generates,
// obtained by growing every day at MaxGrowth.
type Projection struct {
	// MaxSize is the length of the largest array.
	MaxSize float64
	// Elements is the number of values stored across all days.
	Elements float64
	// SortWork is the sum of squared array lengths, the order of the
	// insertion sort cost of benchmarking the dataset.
	SortWork float64
}

// Project computes the Projection of cfg without generating anything.
// Lengths are float64 so that runaway growth saturates instead of
// overflowing.
func Project(cfg Config) Projection {
	var (
		p    Projection
		size float64
	)

	for m := 1; m <= cfg.Months; m++ {
		for d := 1; d <= cfg.Days; d++ {
			if isFresh(cfg.Mode, m, d) {
				size = float64(cfg.StartCount)
			} else {
				next := math.Floor(size * (1 + cfg.MaxGrowth))
				if next <= size {
					next = size + 1
				}
				size = next
			}

			p.MaxSize = max(p.MaxSize, size)
			p.Elements += size
			p.SortWork += size * size
		}
	}

	return p
}

func (g *Generator) fresh(month, day int) bool {
	return isFresh(g.cfg.Mode, month, day)
}

func isFresh(mode Mode, month, day int) bool {
	if mode == ModeContinuous {
		return month == 1 && day == 1
	}

	return day == 1
}

func (g *Generator) grow(values []int) []int {
	rate := g.cfg.MinGrowth + g.rng.Float64()*(g.cfg.MaxGrowth-g.cfg.MinGrowth)

	total := int(float64(len(values)) * (1 + rate))
	if total <= len(values) {
		total = len(values) + 1
	}

	return g.draw(values, total-len(values))
}

func (g *Generator) draw(values []int, n int) []int {
	span := g.cfg.MaxValue - g.cfg.MinValue
	for i := 0; i < n; i++ {
		values = append(values, g.cfg.MinValue+g.rng.Intn(span))
	}

	return values
}
