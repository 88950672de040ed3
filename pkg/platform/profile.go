package platform

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// Profile holds every deployment-tunable constant of the return engine.
// The built-in 20-year and 8-year contracts are two instances of it.
type Profile struct {
	Name               string          `yaml:"name" json:"name"`
	BaseRate           float64         `yaml:"base_rate" json:"base_rate"`
	ContractYears      int             `yaml:"contract_years" json:"contract_years"`
	HorizonYears       int             `yaml:"horizon_years" json:"horizon_years"`
	AnnualInflation    float64         `yaml:"annual_inflation" json:"annual_inflation"`
	LocalizationFactor float64         `yaml:"localization_factor" json:"localization_factor"`
	TimeOfUseFactor    float64         `yaml:"time_of_use_factor" json:"time_of_use_factor"`
	DegradationRate    float64         `yaml:"degradation_rate" json:"degradation_rate"`
	CostPerWatt        float64         `yaml:"cost_per_watt" json:"cost_per_watt"`
	OccupancyRatio     float64         `yaml:"occupancy_ratio" json:"occupancy_ratio"`
	Benchmarks         []BenchmarkRate `yaml:"benchmarks" json:"benchmarks"`
	Yield              YieldSettings   `yaml:"yield" json:"yield"`
}

// BenchmarkRate is a fixed-rate alternative investment.
type BenchmarkRate struct {
	Name       string  `yaml:"name" json:"name"`
	AnnualRate float64 `yaml:"annual_rate" json:"annual_rate"`
}

// YieldSettings configures the irradiance lookup.
type YieldSettings struct {
	Endpoint      string        `yaml:"endpoint" json:"endpoint"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	Retries       int           `yaml:"retries" json:"retries"`
	SystemLossPct float64       `yaml:"system_loss_pct" json:"system_loss_pct"`
	CacheTTL      time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	Offline       bool          `yaml:"offline" json:"offline"`
}

const DefaultProfileName = "satba-20"

// DefaultProfile returns the 20-year regulated contract profile.
func DefaultProfile() Profile {
	return Profile{
		Name:               DefaultProfileName,
		BaseRate:           3820,
		ContractYears:      20,
		HorizonYears:       20,
		AnnualInflation:    0.30,
		LocalizationFactor: 1.2,
		TimeOfUseFactor:    1.0,
		DegradationRate:    0.007,
		CostPerWatt:        35000,
		OccupancyRatio:     0.75,
		Benchmarks: []BenchmarkRate{
			{Name: "Bank deposit", AnnualRate: 0.22},
			{Name: "Gold", AnnualRate: 0.30},
			{Name: "Stock market", AnnualRate: 0.25},
		},
		Yield: YieldSettings{
			Endpoint:      "https://re.jrc.ec.europa.eu/api/v5_2",
			Timeout:       30 * time.Second,
			Retries:       1,
			SystemLossPct: 14,
			CacheTTL:      24 * time.Hour,
		},
	}
}

var builtinProfiles = map[string]func() Profile{
	"satba-20": DefaultProfile,
	"satba-8": func() Profile {
		p := DefaultProfile()
		p.Name = "satba-8"
		p.ContractYears = 8
		return p
	},
}

// ProfileNames lists built-in profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for n := range builtinProfiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadProfile resolves a built-in profile name or a YAML file path. An empty
// ref yields the default profile. Fields missing from a YAML file keep the
// default profile's values.
func LoadProfile(ref string) (Profile, error) {
	if ref == "" {
		return DefaultProfile(), nil
	}
	if build, ok := builtinProfiles[ref]; ok {
		return build(), nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", ref, err)
	}
	p := DefaultProfile()
	p.Name = ""
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", ref, err)
	}
	if p.Name == "" {
		p.Name = ref
	}
	return p, nil
}

// ApplyEnv overrides profile constants from SOLAR_* environment variables.
func (p Profile) ApplyEnv() Profile {
	p.BaseRate = GetEnvFloat("SOLAR_BASE_RATE", p.BaseRate)
	p.ContractYears = GetEnvInt("SOLAR_CONTRACT_YEARS", p.ContractYears)
	p.HorizonYears = GetEnvInt("SOLAR_HORIZON_YEARS", p.HorizonYears)
	p.AnnualInflation = GetEnvFloat("SOLAR_ANNUAL_INFLATION", p.AnnualInflation)
	p.LocalizationFactor = GetEnvFloat("SOLAR_LOCALIZATION_FACTOR", p.LocalizationFactor)
	p.TimeOfUseFactor = GetEnvFloat("SOLAR_TOU_FACTOR", p.TimeOfUseFactor)
	p.DegradationRate = GetEnvFloat("SOLAR_DEGRADATION_RATE", p.DegradationRate)
	p.CostPerWatt = GetEnvFloat("SOLAR_COST_PER_WATT", p.CostPerWatt)
	p.OccupancyRatio = GetEnvFloat("SOLAR_OCCUPANCY_RATIO", p.OccupancyRatio)
	p.Yield.Endpoint = GetEnv("SOLAR_PVGIS_ENDPOINT", p.Yield.Endpoint)
	p.Yield.Timeout = GetEnvDuration("SOLAR_PVGIS_TIMEOUT", p.Yield.Timeout)
	p.Yield.CacheTTL = GetEnvDuration("SOLAR_YIELD_CACHE_TTL", p.Yield.CacheTTL)
	p.Yield.Offline = GetEnvBool("SOLAR_OFFLINE", p.Yield.Offline)
	return p
}

// Validate rejects profiles that would make the engine meaningless.
func (p Profile) Validate() error {
	switch {
	case p.BaseRate <= 0:
		return solarerrors.NewConfigurationError("base_rate", "must be positive, got %v", p.BaseRate)
	case p.ContractYears <= 0:
		return solarerrors.NewConfigurationError("contract_years", "must be positive, got %d", p.ContractYears)
	case p.HorizonYears < p.ContractYears:
		return solarerrors.NewConfigurationError("horizon_years", "horizon %d is shorter than contract %d", p.HorizonYears, p.ContractYears)
	case p.AnnualInflation <= -1:
		return solarerrors.NewConfigurationError("annual_inflation", "must be greater than -1, got %v", p.AnnualInflation)
	case p.LocalizationFactor <= 0:
		return solarerrors.NewConfigurationError("localization_factor", "must be positive, got %v", p.LocalizationFactor)
	case p.TimeOfUseFactor <= 0:
		return solarerrors.NewConfigurationError("time_of_use_factor", "must be positive, got %v", p.TimeOfUseFactor)
	case p.DegradationRate < 0:
		return solarerrors.NewConfigurationError("degradation_rate", "must not be negative, got %v", p.DegradationRate)
	case p.CostPerWatt < 0:
		return solarerrors.NewConfigurationError("cost_per_watt", "must not be negative, got %v", p.CostPerWatt)
	case p.OccupancyRatio <= 0 || p.OccupancyRatio > 1:
		return solarerrors.NewConfigurationError("occupancy_ratio", "must be in (0, 1], got %v", p.OccupancyRatio)
	}
	seen := make(map[string]bool, len(p.Benchmarks))
	for _, b := range p.Benchmarks {
		if b.Name == "" {
			return solarerrors.NewConfigurationError("benchmarks", "benchmark without a name")
		}
		if seen[b.Name] {
			return solarerrors.NewConfigurationError("benchmarks", "duplicate benchmark %q", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}
