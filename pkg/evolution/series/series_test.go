package series

import (
	"testing"
)

func TestNewDropsNonPositiveValues(t *testing.T) {
	s := New("test_metric", []Point{
		{Year: 2000, Value: 10},
		{Year: 2001, Value: 0},
		{Year: 2002, Value: -5},
		{Year: 2003, Value: 20},
	})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	for _, p := range s.Points() {
		if p.Value <= 0 {
			t.Errorf("non-positive value %v survived construction", p.Value)
		}
	}
}

func TestNewSortsByYear(t *testing.T) {
	s := New("test_metric", []Point{
		{Year: 2010, Value: 3},
		{Year: 1990, Value: 1},
		{Year: 2000, Value: 2},
	})

	points := s.Points()
	for i := 1; i < len(points); i++ {
		if points[i].Year < points[i-1].Year {
			t.Errorf("points not sorted: year %d before %d", points[i-1].Year, points[i].Year)
		}
	}

	first, ok := s.First()
	if !ok || first.Year != 1990 {
		t.Errorf("First() = %+v, %v, want year 1990", first, ok)
	}
	last, ok := s.Last()
	if !ok || last.Year != 2010 {
		t.Errorf("Last() = %+v, %v, want year 2010", last, ok)
	}
}

func TestEmptySeries(t *testing.T) {
	s := New("empty", nil)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.First(); ok {
		t.Error("First() on empty series returned ok")
	}
	if _, ok := s.Last(); ok {
		t.Error("Last() on empty series returned ok")
	}
}

func TestYearRange(t *testing.T) {
	s := New("test_metric", []Point{
		{Year: 1980, Value: 1},
		{Year: 1990, Value: 2},
		{Year: 2000, Value: 3},
		{Year: 2010, Value: 4},
	})

	sub := s.YearRange(1990, 2000)
	if sub.Len() != 2 {
		t.Fatalf("YearRange(1990, 2000).Len() = %d, want 2", sub.Len())
	}
	first, _ := sub.First()
	last, _ := sub.Last()
	if first.Year != 1990 || last.Year != 2000 {
		t.Errorf("YearRange bounds = [%d, %d], want [1990, 2000]", first.Year, last.Year)
	}
}

func TestPointsReturnsCopy(t *testing.T) {
	s := New("test_metric", []Point{{Year: 2000, Value: 1}})
	points := s.Points()
	points[0].Value = 999

	fresh, _ := s.First()
	if fresh.Value != 1 {
		t.Error("mutating Points() result leaked into the series")
	}
}

func TestFromValue(t *testing.T) {
	v := 42.0
	zero := 0.0

	tests := []struct {
		name   string
		value  *float64
		wantOK bool
	}{
		{"present positive", &v, true},
		{"present zero", &zero, false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := FromValue("rec", 2000, tt.value)
			if ok != tt.wantOK {
				t.Errorf("FromValue ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && p.Value != *tt.value {
				t.Errorf("FromValue value = %v, want %v", p.Value, *tt.value)
			}
		})
	}
}
