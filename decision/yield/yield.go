// Package yield supplies annual and monthly energy production estimates.
//
// A Provider may fail; the Resolver turns any failure into a local
// approximation so callers always get an Estimate.
package yield

import (
	"context"
	"fmt"
)

// Month is a Solar Hijri calendar month, Farvardin first.
type Month int

const (
	Farvardin Month = iota
	Ordibehesht
	Khordad
	Tir
	Mordad
	Shahrivar
	Mehr
	Aban
	Azar
	Dey
	Bahman
	Esfand
)

var monthNames = [...]string{
	"Farvardin", "Ordibehesht", "Khordad", "Tir", "Mordad", "Shahrivar",
	"Mehr", "Aban", "Azar", "Dey", "Bahman", "Esfand",
}

// MonthOrder is the contract-year month order used by the projector.
var MonthOrder = [12]Month{Farvardin, Ordibehesht, Khordad, Tir, Mordad, Shahrivar, Mehr, Aban, Azar, Dey, Bahman, Esfand}

func (m Month) String() string {
	if m < 0 || int(m) >= len(monthNames) {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// MarshalText keys JSON maps by month name.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts a month name.
func (m *Month) UnmarshalText(b []byte) error {
	for i, n := range monthNames {
		if n == string(b) {
			*m = Month(i)
			return nil
		}
	}
	return fmt.Errorf("unknown month %q", b)
}

// FromGregorian maps a Gregorian month (1-12) to the Solar Hijri month that
// covers most of it: January is Dey, April is Farvardin.
func FromGregorian(g int) (Month, bool) {
	if g < 1 || g > 12 {
		return 0, false
	}
	return Month((g + 8) % 12), true
}

// Source labels where an estimate came from.
type Source string

const (
	SourcePVGIS Source = "PVGIS"
	SourceLocal Source = "local-approximation"
)

// Request identifies a system for a yield lookup.
type Request struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	CapacityKW float64 `json:"capacity_kw"`
	TiltDeg    float64 `json:"tilt_deg"`
}

// Estimate is an annual production figure with its monthly split.
type Estimate struct {
	YearlyKWh  float64           `json:"yearly_kwh"`
	MonthlyKWh map[Month]float64 `json:"monthly_kwh"`
	Source     Source            `json:"source"`
	GHI        float64           `json:"ghi,omitempty"`
	Fallback   bool              `json:"fallback"`
	Note       string            `json:"note,omitempty"`
}

func (e Estimate) clone() Estimate {
	if e.MonthlyKWh != nil {
		m := make(map[Month]float64, len(e.MonthlyKWh))
		for k, v := range e.MonthlyKWh {
			m[k] = v
		}
		e.MonthlyKWh = m
	}
	return e
}

// Provider returns an estimate or an error; an error means the source had no answer.
type Provider interface {
	Estimate(ctx context.Context, req Request) (Estimate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (Estimate, error)

func (f ProviderFunc) Estimate(ctx context.Context, req Request) (Estimate, error) {
	return f(ctx, req)
}
