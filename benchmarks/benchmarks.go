// Package benchmarks times homomorphic operations over repeated runs.
package benchmarks

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Summary holds the statistics of the durations of an operation.
type Summary struct {
	Name   string
	Level  int
	Reps   int
	Mean   time.Duration
	Median time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Measure runs op reps times and summarizes the durations.
// The first error returned by op stops the measure.
func Measure(name string, level, reps int, op func() error) (Summary, error) {

	if reps < 1 {
		return Summary{}, errors.Errorf("cannot Measure %s: reps=%d < 1", name, reps)
	}

	durations := make([]time.Duration, reps)

	for i := range durations {
		start := time.Now()
		if err := op(); err != nil {
			return Summary{}, errors.Wrapf(err, "cannot Measure %s: run %d", name, i)
		}
		durations[i] = time.Since(start)
	}

	return Summarize(name, level, durations)
}

// Summarize computes the statistics of durations.
func Summarize(name string, level int, durations []time.Duration) (s Summary, err error) {

	data := make(stats.Float64Data, len(durations))
	for i, d := range durations {
		data[i] = float64(d.Nanoseconds())
	}

	s = Summary{Name: name, Level: level, Reps: len(durations)}

	for _, stat := range []struct {
		f   func(stats.Float64Data) (float64, error)
		out *time.Duration
	}{
		{stats.Mean, &s.Mean},
		{stats.Median, &s.Median},
		{stats.StandardDeviation, &s.StdDev},
		{stats.Min, &s.Min},
		{stats.Max, &s.Max},
	} {
		var v float64
		if v, err = stat.f(data); err != nil {
			return Summary{}, errors.Wrapf(err, "cannot Summarize %s", name)
		}
		*stat.out = time.Duration(v)
	}

	return
}

func (s Summary) String() string {
	return fmt.Sprintf("%s (level %d, %d runs): mean %v, median %v, std dev %v, min %v, max %v",
		s.Name, s.Level, s.Reps, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
}
