// Package projection turns a production estimate and a tariff into a
// year-by-year income projection with payback and net profit.
//
// Sums use unrounded float64 values; rounding belongs to presentation.
package projection

import (
	"fmt"

	"github.com/sadeghmontazeri/solar/decision/yield"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// RateFunc returns the purchase rate for a zero-based month since contract start.
type RateFunc func(monthIndex int) float64

// Input is everything a projection depends on.
type Input struct {
	InitialCost       float64
	MonthlyProduction map[yield.Month]float64 // baseline, before degradation
	YearlyProduction  float64                 // used for months missing above, divided by 12
	ContractYears     int
	HorizonYears      int
	DegradationRate   float64
	Rate              RateFunc
}

// YearlyRecord is one simulated year.
type YearlyRecord struct {
	Year              int     `json:"year"`
	ProductionKWh     float64 `json:"production_kwh"`
	Income            float64 `json:"income"`
	CumulativeIncome  float64 `json:"cumulative_income"`
	DegradationFactor float64 `json:"degradation_factor"`
	AverageRate       float64 `json:"average_rate"`
	InContract        bool    `json:"in_contract"`
}

// Payback is the point where cumulative income covers the initial cost.
type Payback struct {
	Reached        bool    `json:"reached"`
	Years          float64 `json:"years,omitempty"`
	WholeYears     int     `json:"whole_years,omitempty"`
	Months         int     `json:"months,omitempty"`
	WithinContract bool    `json:"within_contract"`
}

// Result is a finished projection.
type Result struct {
	Years               []YearlyRecord `json:"years"`
	InitialCost         float64        `json:"initial_cost"`
	TotalIncome         float64        `json:"total_income"`
	TotalProductionKWh  float64        `json:"total_production_kwh"`
	NetProfit           float64        `json:"net_profit"`
	FirstYearIncome     float64        `json:"first_year_income"`
	FirstYearProduction float64        `json:"first_year_production_kwh"`
	Payback             Payback        `json:"payback"`
	ContractYears       int            `json:"contract_years"`
	HorizonYears        int            `json:"horizon_years"`
	Degenerate          bool           `json:"degenerate"`
	DegenerateYear      int            `json:"degenerate_year,omitempty"`
	Warnings            []string       `json:"warnings,omitempty"`
}

// Incomes returns the annual incomes in year order.
func (r Result) Incomes() []float64 {
	out := make([]float64, len(r.Years))
	for i, y := range r.Years {
		out[i] = y.Income
	}
	return out
}

// DegenerateError describes the degradation floor, or nil when it was not reached.
func (r Result) DegenerateError(rate float64) error {
	if !r.Degenerate {
		return nil
	}
	return solarerrors.NewDegenerateProjectionError(r.DegenerateYear, rate)
}

// DegradationFactor returns 1 - (year-1)*rate, floored at zero. The second
// result reports whether the floor was reached.
func DegradationFactor(year int, rate float64) (float64, bool) {
	f := 1 - float64(year-1)*rate
	if f <= 0 {
		return 0, true
	}
	return f, false
}

func validate(in Input) error {
	switch {
	case in.ContractYears <= 0:
		return solarerrors.NewConfigurationError("contract_years", "must be positive, got %d", in.ContractYears)
	case in.HorizonYears < in.ContractYears:
		return solarerrors.NewConfigurationError("horizon_years", "horizon %d is shorter than contract %d", in.HorizonYears, in.ContractYears)
	case in.DegradationRate < 0:
		return solarerrors.NewConfigurationError("degradation_rate", "must not be negative, got %v", in.DegradationRate)
	case in.InitialCost < 0:
		return solarerrors.NewConfigurationError("initial_cost", "must not be negative, got %v", in.InitialCost)
	case in.YearlyProduction < 0:
		return solarerrors.NewConfigurationError("yearly_production", "must not be negative, got %v", in.YearlyProduction)
	case in.Rate == nil:
		return solarerrors.NewConfigurationError("rate", "no tariff function")
	}
	return nil
}

// Project simulates HorizonYears years of production and income. It is a
// pure function of its input.
func Project(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	res := Result{
		Years:         make([]YearlyRecord, 0, in.HorizonYears),
		InitialCost:   in.InitialCost,
		ContractYears: in.ContractYears,
		HorizonYears:  in.HorizonYears,
	}

	fallbackMonthly := in.YearlyProduction / 12
	var cumulative float64

	for year := 1; year <= in.HorizonYears; year++ {
		factor, floored := DegradationFactor(year, in.DegradationRate)
		if floored && !res.Degenerate {
			res.Degenerate = true
			res.DegenerateYear = year
		}

		var production, income, rateSum float64
		for offset, month := range yield.MonthOrder {
			base, ok := in.MonthlyProduction[month]
			if !ok {
				base = fallbackMonthly
			}
			prod := base * factor
			rate := in.Rate((year-1)*12 + offset)

			production += prod
			income += prod * rate
			rateSum += rate
		}
		cumulative += income

		res.Years = append(res.Years, YearlyRecord{
			Year:              year,
			ProductionKWh:     production,
			Income:            income,
			CumulativeIncome:  cumulative,
			DegradationFactor: factor,
			AverageRate:       rateSum / 12,
			InContract:        year <= in.ContractYears,
		})
		res.TotalProductionKWh += production
	}

	res.TotalIncome = cumulative
	res.NetProfit = cumulative - in.InitialCost
	if len(res.Years) > 0 {
		res.FirstYearIncome = res.Years[0].Income
		res.FirstYearProduction = res.Years[0].ProductionKWh
	}

	if years, ok := ReturnOnInvestment(res.Incomes(), in.InitialCost); ok {
		whole := int(years)
		res.Payback = Payback{
			Reached:        true,
			Years:          years,
			WholeYears:     whole,
			Months:         int((years - float64(whole)) * 12),
			WithinContract: years <= float64(in.ContractYears),
		}
	}

	if res.Degenerate {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"degradation rate %.4f reduces production to zero from year %d", in.DegradationRate, res.DegenerateYear))
	}
	if !res.Payback.Reached {
		res.Warnings = append(res.Warnings, fmt.Sprintf("investment is not recovered within %d years", in.HorizonYears))
	}
	return res, nil
}

// ReturnOnInvestment returns the fractional year at which cumulative income
// first covers initialCost: whole years before the payback year plus the
// share of that year's income still needed. ok is false if never reached.
func ReturnOnInvestment(incomes []float64, initialCost float64) (years float64, ok bool) {
	var cumulative float64
	for i, income := range incomes {
		cumulative += income
		if cumulative >= initialCost {
			remaining := initialCost - (cumulative - income)
			var monthFraction float64
			if income > 0 {
				monthFraction = remaining / income * 12
			}
			return float64(i) + monthFraction/12, true
		}
	}
	return 0, false
}
