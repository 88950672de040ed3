package yield

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadeghmontazeri/solar/pkg/platform"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

const (
	DefaultPVGISEndpoint = "https://re.jrc.ec.europa.eu/api/v5_2"
	DefaultPVGISTimeout  = 30 * time.Second
	DefaultSystemLossPct = 14.0
)

// PVGISClient queries the JRC PVGIS PVcalc service for a building-mounted,
// south-facing array.
type PVGISClient struct {
	endpoint string
	lossPct  float64
	http     *platform.HTTPClient
	logger   zerolog.Logger
}

// PVGISOption configures a PVGISClient.
type PVGISOption func(*PVGISClient)

func WithEndpoint(endpoint string) PVGISOption {
	return func(c *PVGISClient) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

func WithSystemLoss(pct float64) PVGISOption {
	return func(c *PVGISClient) { c.lossPct = pct }
}

func WithHTTPClient(h *platform.HTTPClient) PVGISOption {
	return func(c *PVGISClient) { c.http = h }
}

func WithPVGISLogger(l zerolog.Logger) PVGISOption {
	return func(c *PVGISClient) { c.logger = l }
}

// NewPVGISClient creates a client with the public endpoint and a 30 s timeout.
func NewPVGISClient(opts ...PVGISOption) *PVGISClient {
	c := &PVGISClient{
		endpoint: DefaultPVGISEndpoint,
		lossPct:  DefaultSystemLossPct,
		http:     platform.NewHTTPClient(0, DefaultPVGISTimeout),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pvgisResponse struct {
	Outputs struct {
		Monthly struct {
			Fixed []struct {
				Month int     `json:"month"`
				Em    float64 `json:"E_m"`
			} `json:"fixed"`
		} `json:"monthly"`
		Totals struct {
			Fixed struct {
				Ey float64 `json:"E_y"`
			} `json:"fixed"`
		} `json:"totals"`
	} `json:"outputs"`
}

// Estimate implements Provider. Every failure is reported as EXTERNAL_DATA_UNAVAILABLE.
func (c *PVGISClient) Estimate(ctx context.Context, req Request) (Estimate, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(req.Latitude))
	q.Set("lon", formatFloat(req.Longitude))
	q.Set("peakpower", formatFloat(req.CapacityKW))
	q.Set("loss", formatFloat(c.lossPct))
	q.Set("mountingplace", "building")
	q.Set("angle", formatFloat(req.TiltDeg))
	q.Set("aspect", "0")
	q.Set("outputformat", "json")
	q.Set("pvcalculation", "1")

	var resp pvgisResponse
	if err := c.http.GetJSON(ctx, c.endpoint+"/PVcalc", q, &resp); err != nil {
		return Estimate{}, solarerrors.NewExternalDataUnavailableError(string(SourcePVGIS), err)
	}

	est, err := resp.toEstimate()
	if err != nil {
		return Estimate{}, solarerrors.NewExternalDataUnavailableError(string(SourcePVGIS), err)
	}
	c.logger.Debug().
		Float64("lat", req.Latitude).
		Float64("lon", req.Longitude).
		Float64("yearly_kwh", est.YearlyKWh).
		Msg("PVGIS estimate received")
	return est, nil
}

func (r pvgisResponse) toEstimate() (Estimate, error) {
	yearly := r.Outputs.Totals.Fixed.Ey
	if yearly <= 0 {
		return Estimate{}, fmt.Errorf("response has no yearly total")
	}
	monthly := make(map[Month]float64, 12)
	for _, m := range r.Outputs.Monthly.Fixed {
		month, ok := FromGregorian(m.Month)
		if !ok {
			return Estimate{}, fmt.Errorf("response has invalid month %d", m.Month)
		}
		monthly[month] = m.Em
	}
	return Estimate{
		YearlyKWh:  yearly,
		MonthlyKWh: monthly,
		Source:     SourcePVGIS,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
