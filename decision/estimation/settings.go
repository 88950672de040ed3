package estimation

import (
	"github.com/shopspring/decimal"

	"github.com/sadeghmontazeri/solar/decision/comparison"
	"github.com/sadeghmontazeri/solar/decision/tariff"
	"github.com/sadeghmontazeri/solar/pkg/platform"
)

// Settings are the deployment constants an Engine runs with.
type Settings struct {
	ProfileName     string                 `json:"profile"`
	Tariff          tariff.Params          `json:"tariff"`
	HorizonYears    int                    `json:"horizon_years"`
	DegradationRate float64                `json:"degradation_rate"`
	CostPerWatt     decimal.Decimal        `json:"cost_per_watt"`
	OccupancyRatio  float64                `json:"occupancy_ratio"`
	Benchmarks      []comparison.Benchmark `json:"benchmarks"`
}

// SettingsFromProfile validates p and converts it.
func SettingsFromProfile(p platform.Profile) (Settings, error) {
	if err := p.Validate(); err != nil {
		return Settings{}, err
	}
	benchmarks := make([]comparison.Benchmark, len(p.Benchmarks))
	for i, b := range p.Benchmarks {
		benchmarks[i] = comparison.Benchmark{Name: b.Name, AnnualRate: b.AnnualRate}
	}
	return Settings{
		ProfileName: p.Name,
		Tariff: tariff.Params{
			BaseRate:           p.BaseRate,
			AnnualInflation:    p.AnnualInflation,
			LocalizationFactor: p.LocalizationFactor,
			TimeOfUseFactor:    p.TimeOfUseFactor,
			ContractYears:      p.ContractYears,
		},
		HorizonYears:    p.HorizonYears,
		DegradationRate: p.DegradationRate,
		CostPerWatt:     decimal.NewFromFloat(p.CostPerWatt),
		OccupancyRatio:  p.OccupancyRatio,
		Benchmarks:      benchmarks,
	}, nil
}

// DefaultSettings returns the settings of the default profile.
func DefaultSettings() Settings {
	s, err := SettingsFromProfile(platform.DefaultProfile())
	if err != nil {
		panic("estimation: default profile is invalid: " + err.Error())
	}
	return s
}
