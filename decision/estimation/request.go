package estimation

import (
	"fmt"
	"math"

	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/yield"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// Input bounds and defaults at the user boundary.
const (
	MinRoofAreaM2     = 10.0
	MaxRoofAreaM2     = 500.0
	DefaultRoofAreaM2 = 30.0
	MinTiltDeg        = 10.0
	MaxTiltDeg        = 45.0
	DefaultTiltDeg    = 35.0
	DefaultLatitude   = 35.6892
	DefaultLongitude  = 51.3890
)

// Request is a user's description of a rooftop installation.
// Zero values select defaults; a zero latitude and longitude pair means Tehran.
type Request struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	RoofAreaM2    float64 `json:"roof_area_m2"`
	TiltDeg       float64 `json:"tilt_deg"`
	Shading       string  `json:"shading"`
	PanelOrigin   string  `json:"panel_origin"`
	PanelName     string  `json:"panel"`
	PanelPowerW   int     `json:"panel_power_w"`
	InverterBrand string  `json:"inverter"`
}

// resolved is a request checked against the catalog.
type resolved struct {
	Request
	shading  yield.Shading
	panel    catalog.PanelSpec
	inverter catalog.InverterSpec
	warnings []string
}

func (r Request) withDefaults() Request {
	if r.Latitude == 0 && r.Longitude == 0 {
		r.Latitude, r.Longitude = DefaultLatitude, DefaultLongitude
	}
	if r.RoofAreaM2 == 0 {
		r.RoofAreaM2 = DefaultRoofAreaM2
	}
	if r.TiltDeg == 0 {
		r.TiltDeg = DefaultTiltDeg
	}
	return r
}

// resolve applies defaults, rejects out-of-range parameters and looks the
// panel and inverter up. Panel power outside the catalog range is clamped.
func resolve(cat *catalog.Catalog, r Request) (resolved, error) {
	r = r.withDefaults()
	out := resolved{}

	switch {
	case math.IsNaN(r.RoofAreaM2) || r.RoofAreaM2 < MinRoofAreaM2 || r.RoofAreaM2 > MaxRoofAreaM2:
		return out, solarerrors.NewInputOutOfRangeError("roof_area_m2", "must be between %.0f and %.0f, got %v", MinRoofAreaM2, MaxRoofAreaM2, r.RoofAreaM2)
	case math.IsNaN(r.TiltDeg) || r.TiltDeg < MinTiltDeg || r.TiltDeg > MaxTiltDeg:
		return out, solarerrors.NewInputOutOfRangeError("tilt_deg", "must be between %.0f and %.0f, got %v", MinTiltDeg, MaxTiltDeg, r.TiltDeg)
	case math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90:
		return out, solarerrors.NewInputOutOfRangeError("latitude", "must be between -90 and 90, got %v", r.Latitude)
	case math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180:
		return out, solarerrors.NewInputOutOfRangeError("longitude", "must be between -180 and 180, got %v", r.Longitude)
	}

	shading, err := yield.ParseShading(r.Shading)
	if err != nil {
		return out, solarerrors.NewInputOutOfRangeError("shading", "%v", err)
	}
	r.Shading = string(shading)

	origin := catalog.Origin(r.PanelOrigin)
	if !origin.Valid() {
		return out, solarerrors.NewInputOutOfRangeError("panel_origin", "unknown origin %q (want foreign or domestic)", r.PanelOrigin)
	}

	panels := cat.Panels(origin)
	if len(panels) == 0 {
		return out, solarerrors.NewInputOutOfRangeError("panel_origin", "no panels with origin %q", origin)
	}
	var panel catalog.PanelSpec
	if r.PanelName == "" {
		panel = panels[0]
	} else {
		p, ok := cat.Panel(r.PanelName)
		if !ok {
			return out, solarerrors.NewInputOutOfRangeError("panel", "unknown panel %q", r.PanelName)
		}
		if origin != catalog.OriginAll && p.Origin != origin {
			return out, solarerrors.NewInputOutOfRangeError("panel", "panel %q is %s, not %s", p.Name, p.Origin, origin)
		}
		panel = p
	}
	r.PanelName = panel.Name

	switch {
	case r.PanelPowerW == 0:
		r.PanelPowerW = panel.DefaultPower
	case !panel.Power.Contains(r.PanelPowerW):
		clamped := panel.ClampPower(r.PanelPowerW)
		out.warnings = append(out.warnings, fmt.Sprintf("panel power %d W is outside %d-%d W for %s; using %d W",
			r.PanelPowerW, panel.Power.Min, panel.Power.Max, panel.Name, clamped))
		r.PanelPowerW = clamped
	}

	var inv catalog.InverterSpec
	if r.InverterBrand == "" {
		all := cat.Inverters()
		if len(all) == 0 {
			return out, solarerrors.NewConfigurationError("inverters", "catalog has no inverters")
		}
		inv = all[0]
	} else {
		i, ok := cat.Inverter(r.InverterBrand)
		if !ok {
			return out, solarerrors.NewInputOutOfRangeError("inverter", "unknown inverter brand %q", r.InverterBrand)
		}
		inv = i
	}
	r.InverterBrand = inv.Brand

	out.Request = r
	out.shading = shading
	out.panel = panel
	out.inverter = inv
	return out, nil
}
