// Package tariff implements the regulated feed-in purchase rate.
//
// The rate escalates every month from contract start:
//
//	rate(m) = base × (1 + monthlyInflation)^m × timeOfUse × localization
//
// and is zero once the contract has expired.
package tariff

import (
	"math"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// Defaults of the 20-year contract, in toman per kWh where applicable.
const (
	DefaultBaseRate           = 3820.0
	DefaultAnnualInflation    = 0.30
	DefaultLocalizationFactor = 1.2
	DefaultTimeOfUseFactor    = 1.0
	DefaultContractYears      = 20
)

// MonthlyInflation converts an annual rate into the equivalent monthly compounding rate.
func MonthlyInflation(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

// MonthlyRate applies the escalation formula with the default base rate.
// It has no contract cutoff; use a Schedule for that.
func MonthlyRate(monthIndex int, monthlyInflation, localizationFactor, timeOfUseFactor float64) float64 {
	return rate(DefaultBaseRate, monthIndex, monthlyInflation, localizationFactor, timeOfUseFactor)
}

func rate(base float64, m int, monthlyInflation, localization, tou float64) float64 {
	return base * math.Pow(1+monthlyInflation, float64(m)) * tou * localization
}

// Schedule is a tariff bound to a contract.
type Schedule struct {
	BaseRate           float64 `json:"base_rate"`
	MonthlyInflation   float64 `json:"monthly_inflation"`
	LocalizationFactor float64 `json:"localization_factor"`
	TimeOfUseFactor    float64 `json:"time_of_use_factor"`
	ContractMonths     int     `json:"contract_months"`
}

// Params are the annual-form inputs of a Schedule.
type Params struct {
	BaseRate           float64 `json:"base_rate" yaml:"base_rate"`
	AnnualInflation    float64 `json:"annual_inflation" yaml:"annual_inflation"`
	LocalizationFactor float64 `json:"localization_factor" yaml:"localization_factor"`
	TimeOfUseFactor    float64 `json:"time_of_use_factor" yaml:"time_of_use_factor"`
	ContractYears      int     `json:"contract_years" yaml:"contract_years"`
}

// DefaultParams returns the 20-year contract terms.
func DefaultParams() Params {
	return Params{
		BaseRate:           DefaultBaseRate,
		AnnualInflation:    DefaultAnnualInflation,
		LocalizationFactor: DefaultLocalizationFactor,
		TimeOfUseFactor:    DefaultTimeOfUseFactor,
		ContractYears:      DefaultContractYears,
	}
}

// NewSchedule validates p and derives the monthly inflation once.
func NewSchedule(p Params) (Schedule, error) {
	switch {
	case p.BaseRate <= 0:
		return Schedule{}, solarerrors.NewConfigurationError("base_rate", "must be positive, got %v", p.BaseRate)
	case p.AnnualInflation <= -1:
		return Schedule{}, solarerrors.NewConfigurationError("annual_inflation", "must be greater than -1, got %v", p.AnnualInflation)
	case p.LocalizationFactor <= 0:
		return Schedule{}, solarerrors.NewConfigurationError("localization_factor", "must be positive, got %v", p.LocalizationFactor)
	case p.TimeOfUseFactor <= 0:
		return Schedule{}, solarerrors.NewConfigurationError("time_of_use_factor", "must be positive, got %v", p.TimeOfUseFactor)
	case p.ContractYears <= 0:
		return Schedule{}, solarerrors.NewConfigurationError("contract_years", "must be positive, got %d", p.ContractYears)
	}
	return Schedule{
		BaseRate:           p.BaseRate,
		MonthlyInflation:   MonthlyInflation(p.AnnualInflation),
		LocalizationFactor: p.LocalizationFactor,
		TimeOfUseFactor:    p.TimeOfUseFactor,
		ContractMonths:     p.ContractYears * 12,
	}, nil
}

// Rate returns the purchase rate for zero-based month m, or 0 outside the contract.
func (s Schedule) Rate(m int) float64 {
	if m < 0 || m >= s.ContractMonths {
		return 0
	}
	return rate(s.BaseRate, m, s.MonthlyInflation, s.LocalizationFactor, s.TimeOfUseFactor)
}

// MonthRate is one row of a rate table.
type MonthRate struct {
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Rate  float64 `json:"rate"`
}

// Table lists the first n monthly rates.
func (s Schedule) Table(n int) []MonthRate {
	if n < 0 {
		n = 0
	}
	out := make([]MonthRate, n)
	for m := 0; m < n; m++ {
		out[m] = MonthRate{Month: m, Year: m/12 + 1, Rate: s.Rate(m)}
	}
	return out
}

// YearlyAverage returns the mean rate of each contract year.
func (s Schedule) YearlyAverage() []float64 {
	years := s.ContractMonths / 12
	out := make([]float64, years)
	for y := 0; y < years; y++ {
		var sum float64
		for i := 0; i < 12; i++ {
			sum += s.Rate(y*12 + i)
		}
		out[y] = sum / 12
	}
	return out
}
