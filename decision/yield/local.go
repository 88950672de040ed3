package yield

import (
	"context"
	"math"
)

// Local approximation constants.
const (
	DefaultPerformanceRatio = 0.78
	minGHI                  = 1600.0
	maxGHI                  = 2300.0
)

// Share of annual production per month at Iranian latitudes.
var monthlyShares = map[Month]float64{
	Farvardin:   0.070,
	Ordibehesht: 0.095,
	Khordad:     0.105,
	Tir:         0.110,
	Mordad:      0.115,
	Shahrivar:   0.100,
	Mehr:        0.090,
	Aban:        0.080,
	Azar:        0.065,
	Dey:         0.055,
	Bahman:      0.055,
	Esfand:      0.060,
}

// LocalEstimator approximates yield from latitude alone. It never fails.
type LocalEstimator struct {
	PerformanceRatio float64
}

// NewLocalEstimator returns an estimator with the default performance ratio.
func NewLocalEstimator() LocalEstimator {
	return LocalEstimator{PerformanceRatio: DefaultPerformanceRatio}
}

// GHI returns annual global horizontal irradiance in kWh/m², falling by 25 per
// degree north of 25°N and clamped to [1600, 2300].
func GHI(latitude float64) float64 {
	g := 2100 - (latitude-25)*25
	return math.Max(minGHI, math.Min(maxGHI, g))
}

// Compute is Estimate without the context.
func (l LocalEstimator) Compute(req Request) Estimate {
	pr := l.PerformanceRatio
	if pr <= 0 {
		pr = DefaultPerformanceRatio
	}
	ghi := GHI(req.Latitude)
	// GHI in kWh/m² equals peak-sun hours per year at 1 kW/m².
	yearly := req.CapacityKW * ghi * pr

	monthly := make(map[Month]float64, len(monthlyShares))
	for m, share := range monthlyShares {
		monthly[m] = yearly * share
	}
	return Estimate{
		YearlyKWh:  yearly,
		MonthlyKWh: monthly,
		Source:     SourceLocal,
		GHI:        ghi,
	}
}

// Estimate implements Provider.
func (l LocalEstimator) Estimate(_ context.Context, req Request) (Estimate, error) {
	return l.Compute(req), nil
}
