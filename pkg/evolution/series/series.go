// Package series provides a year-ordered view over one numeric field of a
// dataset. It is the leaf utility every analyzer builds on.
package series

import (
	"sort"
)

// Point is one (year, value) observation.
type Point struct {
	Year  int
	Value float64
	// Name identifies the record the value came from, for reporting.
	Name string
}

// MetricSeries is an ordered sequence of points, ascending by year.
// Values of zero or below never enter a series; they carry no growth signal
// and must not be allowed to bias a rate calculation.
type MetricSeries struct {
	Metric string
	points []Point
}

// New builds a series from raw points, dropping non-positive values and
// sorting ascending by year. Input order is irrelevant.
func New(metric string, points []Point) MetricSeries {
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Value > 0 {
			kept = append(kept, p)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Year < kept[j].Year })
	return MetricSeries{Metric: metric, points: kept}
}

// Len returns the number of usable points.
func (s MetricSeries) Len() int { return len(s.points) }

// Points returns a copy of the ordered points.
func (s MetricSeries) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// First returns the earliest point. ok is false for an empty series.
func (s MetricSeries) First() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[0], true
}

// Last returns the latest point. ok is false for an empty series.
func (s MetricSeries) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// YearRange returns a sub-series restricted to [startYear, endYear].
func (s MetricSeries) YearRange(startYear, endYear int) MetricSeries {
	kept := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if p.Year >= startYear && p.Year <= endYear {
			kept = append(kept, p)
		}
	}
	return MetricSeries{Metric: s.Metric, points: kept}
}

// FromValue projects one point from a record field. Nil or non-positive
// values yield no point; the caller simply skips the record.
func FromValue(name string, year int, value *float64) (Point, bool) {
	if value == nil || *value <= 0 {
		return Point{}, false
	}
	return Point{Year: year, Value: *value, Name: name}, true
}
