// Package carbon estimates the grid emissions a rooftop array displaces.
// Grid intensity comes from Electricity Maps when a token is configured,
// with static per-zone averages as the fallback.
package carbon

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
	"github.com/sadeghmontazeri/solar/pkg/platform"
)

// DefaultZone is the Electricity Maps zone of the national grid.
const DefaultZone = "IR"

// GlobalAverage is used for zones without static data, in gCO2e/kWh.
const GlobalAverage = 475.0

const (
	SourceElectricityMaps = "electricity-maps"
	SourceStatic          = "static"
	SourceGlobalAverage   = "global-average"
)

// Intensity is the carbon intensity of a grid zone.
type Intensity struct {
	Zone        string  `json:"zone"`
	GramsPerKWh float64 `json:"grams_per_kwh"`
	Source      string  `json:"source"`
}

// IntensitySource provides carbon intensity for grid zones
type IntensitySource interface {
	Intensity(ctx context.Context, zone string) (Intensity, error)
}

// =============================================================================
// STATIC SOURCE
// =============================================================================

// approximate lifecycle averages, gCO2e/kWh
var staticIntensityData = map[string]float64{
	"IR": 570,
	"IQ": 690,
	"TR": 420,
	"AM": 190,
	"AZ": 450,
	"AE": 420,
	"SA": 560,
	"PK": 420,
	"TM": 600,
}

// StaticSource serves intensity from the built-in zone table.
type StaticSource struct{}

// Intensity returns the static value for zone, or the global average.
func (StaticSource) Intensity(_ context.Context, zone string) (Intensity, error) {
	zone = normalizeZone(zone)
	if v, ok := staticIntensityData[zone]; ok {
		return Intensity{Zone: zone, GramsPerKWh: v, Source: SourceStatic}, nil
	}
	return Intensity{Zone: zone, GramsPerKWh: GlobalAverage, Source: SourceGlobalAverage}, nil
}

func normalizeZone(zone string) string {
	zone = strings.ToUpper(strings.TrimSpace(zone))
	if zone == "" {
		return DefaultZone
	}
	return zone
}

// =============================================================================
// ELECTRICITY MAPS CLIENT
// =============================================================================

const DefaultElectricityMapsEndpoint = "https://api.electricitymap.org/v3"

// ElectricityMapsClient fetches the latest carbon intensity from the Electricity Maps API
type ElectricityMapsClient struct {
	endpoint string
	http     *platform.HTTPClient
	fallback StaticSource
	logger   zerolog.Logger

	cacheMu  sync.RWMutex
	cache    map[string]cachedIntensity
	cacheTTL time.Duration
	now      func() time.Time
}

var errMissingIntensity = errors.New("response has no carbonIntensity")

type cachedIntensity struct {
	value     Intensity
	expiresAt time.Time
}

// NewElectricityMapsClient creates a client authenticated with token.
func NewElectricityMapsClient(token string, logger zerolog.Logger) *ElectricityMapsClient {
	h := platform.NewHTTPClient(1, 10*time.Second)
	h.Logger = logger
	h.Header = http.Header{"Auth-Token": []string{token}}
	return &ElectricityMapsClient{
		endpoint: DefaultElectricityMapsEndpoint,
		http:     h,
		logger:   logger,
		cache:    make(map[string]cachedIntensity),
		cacheTTL: 15 * time.Minute,
		now:      time.Now,
	}
}

// WithEndpoint points the client at another API base URL
func (c *ElectricityMapsClient) WithEndpoint(endpoint string) *ElectricityMapsClient {
	c.endpoint = strings.TrimRight(endpoint, "/")
	return c
}

// Intensity returns the live value for zone. Lookup failures fall back to the
// static table and are logged, never returned.
func (c *ElectricityMapsClient) Intensity(ctx context.Context, zone string) (Intensity, error) {
	zone = normalizeZone(zone)

	c.cacheMu.RLock()
	if cached, ok := c.cache[zone]; ok && c.now().Before(cached.expiresAt) {
		c.cacheMu.RUnlock()
		return cached.value, nil
	}
	c.cacheMu.RUnlock()

	value, err := c.fetch(ctx, zone)
	if err != nil {
		c.logger.Info().Err(err).Str("zone", zone).Msg("carbon intensity lookup failed, using static data")
		return c.fallback.Intensity(ctx, zone)
	}

	c.cacheMu.Lock()
	c.cache[zone] = cachedIntensity{value: value, expiresAt: c.now().Add(c.cacheTTL)}
	c.cacheMu.Unlock()

	return value, nil
}

func (c *ElectricityMapsClient) fetch(ctx context.Context, zone string) (Intensity, error) {
	var result struct {
		Zone            string   `json:"zone"`
		CarbonIntensity *float64 `json:"carbonIntensity"`
	}
	err := c.http.GetJSON(ctx, c.endpoint+"/carbon-intensity/latest", url.Values{"zone": {zone}}, &result)
	if err != nil {
		return Intensity{}, solarerrors.NewExternalDataUnavailableError(SourceElectricityMaps, err)
	}
	if result.CarbonIntensity == nil {
		return Intensity{}, solarerrors.NewExternalDataUnavailableError(SourceElectricityMaps, errMissingIntensity)
	}
	return Intensity{Zone: zone, GramsPerKWh: *result.CarbonIntensity, Source: SourceElectricityMaps}, nil
}

// =============================================================================
// AVOIDED EMISSIONS
// =============================================================================

// Footprint is the emissions an array displaces from the grid.
type Footprint struct {
	Intensity       Intensity `json:"intensity"`
	FirstYearKg     float64   `json:"first_year_kg_co2e"`
	LifetimeKg      float64   `json:"lifetime_kg_co2e"`
	LifetimeTonnes  float64   `json:"lifetime_tonnes_co2e"`
	ProductionYears int       `json:"production_years"`
}

// Avoided converts yearly production in kWh into displaced emissions.
func Avoided(in Intensity, yearlyKWh []float64) Footprint {
	f := Footprint{Intensity: in, ProductionYears: len(yearlyKWh)}
	for i, kwh := range yearlyKWh {
		kg := kwh * in.GramsPerKWh / 1000
		if i == 0 {
			f.FirstYearKg = kg
		}
		f.LifetimeKg += kg
	}
	f.LifetimeTonnes = f.LifetimeKg / 1000
	return f
}
