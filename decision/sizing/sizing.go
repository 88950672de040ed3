// Package sizing derives the installable array and a matching inverter from roof area.
package sizing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/sadeghmontazeri/solar/decision/catalog"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// DefaultOccupancyRatio is the usable share of a roof after walkways and setbacks.
const DefaultOccupancyRatio = 0.75

// SystemSizing is the array that fits on a roof.
type SystemSizing struct {
	RoofAreaM2      float64 `json:"roof_area_m2"`
	UsableAreaM2    float64 `json:"usable_area_m2"`
	PanelCount      int     `json:"panel_count"`
	PanelPowerW     int     `json:"panel_power_w"`
	CapacityKW      float64 `json:"capacity_kw"`
	OccupiedAreaM2  float64 `json:"occupied_area_m2"`
	RemainingAreaM2 float64 `json:"remaining_area_m2"`
}

// Sizer sizes arrays with a configurable occupancy ratio.
type Sizer struct {
	OccupancyRatio float64
}

// SizeSystem sizes an array with the default occupancy ratio.
// chosenPowerW must already be inside the panel's power range.
func SizeSystem(roofAreaM2 float64, panel catalog.PanelSpec, chosenPowerW int) (SystemSizing, error) {
	return Sizer{OccupancyRatio: DefaultOccupancyRatio}.Size(roofAreaM2, panel, chosenPowerW)
}

// Size computes panel count, capacity and area split.
func (s Sizer) Size(roofAreaM2 float64, panel catalog.PanelSpec, chosenPowerW int) (SystemSizing, error) {
	if panel.AreaM2 <= 0 {
		return SystemSizing{}, solarerrors.NewConfigurationError("area_m2", "panel %q has non-positive area %v", panel.Name, panel.AreaM2)
	}
	ratio := s.OccupancyRatio
	if ratio <= 0 || ratio > 1 {
		return SystemSizing{}, solarerrors.NewConfigurationError("occupancy_ratio", "must be in (0, 1], got %v", ratio)
	}

	usable := roofAreaM2 * ratio
	count := int(math.Floor(usable / panel.AreaM2))
	occupied := float64(count) * panel.AreaM2

	return SystemSizing{
		RoofAreaM2:      roofAreaM2,
		UsableAreaM2:    usable,
		PanelCount:      count,
		PanelPowerW:     chosenPowerW,
		CapacityKW:      round2(float64(count*chosenPowerW) / 1000),
		OccupiedAreaM2:  occupied,
		RemainingAreaM2: roofAreaM2 - occupied,
	}, nil
}

// SelectedInverter is the catalog model chosen for an array.
type SelectedInverter struct {
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	SizeKW        int             `json:"size_kw"`
	WarrantyYears int             `json:"warranty_years"`
	Origin        string          `json:"origin"`
	Price         decimal.Decimal `json:"price"`
	Undersized    bool            `json:"undersized"`
	Warning       string          `json:"warning,omitempty"`
}

// MatchInverter picks the smallest size that covers capacityKW. When nothing
// covers it, the largest size is returned with Undersized set; that is a
// warning for the caller, not an error.
func MatchInverter(capacityKW float64, inv catalog.InverterSpec) (SelectedInverter, error) {
	sizes := inv.Sizes()
	if len(sizes) == 0 {
		return SelectedInverter{}, solarerrors.NewConfigurationError("models", "inverter %q has an empty size table", inv.Brand)
	}

	selected := sizes[len(sizes)-1]
	undersized := true
	for _, size := range sizes {
		if float64(size) >= capacityKW {
			selected = size
			undersized = false
			break
		}
	}

	out := SelectedInverter{
		Brand:         inv.Brand,
		Model:         inv.Models[selected],
		SizeKW:        selected,
		WarrantyYears: inv.WarrantyYears,
		Origin:        inv.Origin,
		Price:         decimal.NewFromInt(int64(selected)).Mul(inv.PricePerKW),
		Undersized:    undersized,
	}
	if undersized {
		out.Warning = fmt.Sprintf("array capacity %.2f kW exceeds the largest %s model (%d kW)", capacityKW, inv.Brand, selected)
	}
	return out, nil
}

// CostBreakdown is the up-front investment.
type CostBreakdown struct {
	PanelCost    decimal.Decimal `json:"panel_cost"`
	InverterCost decimal.Decimal `json:"inverter_cost"`
	Total        decimal.Decimal `json:"total"`
}

// InstallationCost prices the array per installed watt and adds the inverter.
func InstallationCost(s SystemSizing, costPerWatt decimal.Decimal, inv SelectedInverter) CostBreakdown {
	watts := decimal.NewFromFloat(s.CapacityKW).Mul(decimal.NewFromInt(1000))
	panelCost := watts.Mul(costPerWatt)
	return CostBreakdown{
		PanelCost:    panelCost,
		InverterCost: inv.Price,
		Total:        panelCost.Add(inv.Price),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
