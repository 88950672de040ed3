package tariff

import (
	"errors"
	"math"
	"testing"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestMonthlyInflationCompoundsToAnnual(t *testing.T) {
	for _, annual := range []float64{0, 0.10, 0.30, 0.45} {
		m := MonthlyInflation(annual)
		if got := math.Pow(1+m, 12) - 1; !approx(got, annual) {
			t.Fatalf("annual %v: compounded back to %v", annual, got)
		}
	}
}

func TestMonthlyRateFirstMonth(t *testing.T) {
	got := MonthlyRate(0, MonthlyInflation(0.30), 1.2, 1.0)
	if !approx(got, 4584) {
		t.Fatalf("month 0 rate = %v, want 4584", got)
	}
	// Twelve months of monthly compounding equal one year at the annual rate.
	year2 := MonthlyRate(12, MonthlyInflation(0.30), 1.2, 1.0)
	if !approx(year2, 4584*1.3) {
		t.Fatalf("month 12 rate = %v, want %v", year2, 4584*1.3)
	}
}

func TestScheduleMonotonicWithCutoff(t *testing.T) {
	s, err := NewSchedule(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if s.ContractMonths != 240 {
		t.Fatalf("contract months = %d", s.ContractMonths)
	}
	for m := 0; m < s.ContractMonths-1; m++ {
		if s.Rate(m+1) <= s.Rate(m) {
			t.Fatalf("rate not increasing at month %d: %v -> %v", m, s.Rate(m), s.Rate(m+1))
		}
	}
	for _, m := range []int{240, 241, 300, 1000, -1} {
		if s.Rate(m) != 0 {
			t.Fatalf("rate(%d) = %v, want 0", m, s.Rate(m))
		}
	}
}

func TestScheduleShortContract(t *testing.T) {
	p := DefaultParams()
	p.ContractYears = 8
	s, err := NewSchedule(p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Rate(95) == 0 || s.Rate(96) != 0 {
		t.Fatalf("8-year cutoff misplaced: rate(95)=%v rate(96)=%v", s.Rate(95), s.Rate(96))
	}
	if got := len(s.YearlyAverage()); got != 8 {
		t.Fatalf("yearly averages = %d", got)
	}
}

func TestTable(t *testing.T) {
	s, _ := NewSchedule(DefaultParams())
	rows := s.Table(24)
	if len(rows) != 24 || rows[12].Year != 2 || rows[12].Month != 12 {
		t.Fatalf("unexpected table: %+v", rows[12])
	}
	if rows[0].Rate != s.Rate(0) {
		t.Fatalf("table row 0 = %v", rows[0].Rate)
	}
	if len(s.Table(-3)) != 0 {
		t.Fatal("negative length should yield an empty table")
	}
}

func TestNewScheduleRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero base", func(p *Params) { p.BaseRate = 0 }},
		{"inflation -100%", func(p *Params) { p.AnnualInflation = -1 }},
		{"zero localization", func(p *Params) { p.LocalizationFactor = 0 }},
		{"negative time of use", func(p *Params) { p.TimeOfUseFactor = -1 }},
		{"no contract", func(p *Params) { p.ContractYears = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := NewSchedule(p); !errors.Is(err, solarerrors.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
