package estimation

import (
	"time"

	"github.com/google/uuid"

	"github.com/sadeghmontazeri/solar/decision/carbon"
	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/comparison"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/decision/projection"
	"github.com/sadeghmontazeri/solar/decision/sizing"
	"github.com/sadeghmontazeri/solar/decision/tariff"
	"github.com/sadeghmontazeri/solar/decision/yield"
)

// SizingPreview is the array and cost for a request, before any yield lookup.
type SizingPreview struct {
	Request  Request                 `json:"request"`
	Panel    catalog.PanelSpec       `json:"panel"`
	Sizing   sizing.SystemSizing     `json:"sizing"`
	Inverter sizing.SelectedInverter `json:"inverter"`
	Cost     sizing.CostBreakdown    `json:"cost"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Report is a finished estimation.
type Report struct {
	ID         uuid.UUID                `json:"id"`
	CreatedAt  time.Time                `json:"created_at"`
	Profile    string                   `json:"profile"`
	Request    Request                  `json:"request"`
	Panel      catalog.PanelSpec        `json:"panel"`
	Sizing     sizing.SystemSizing      `json:"sizing"`
	Inverter   sizing.SelectedInverter  `json:"inverter"`
	Cost       sizing.CostBreakdown     `json:"cost"`
	Tariff     tariff.Schedule          `json:"tariff"`
	Yield      yield.Estimate           `json:"yield"`
	Projection projection.Result        `json:"projection"`
	Comparison []comparison.Entry       `json:"comparison"`
	Confidence float64                  `json:"confidence"`
	Carbon     *carbon.Footprint        `json:"carbon,omitempty"`
	Policy     *policy.EvaluationResult `json:"policy,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty"`
}

// Facts summarizes the report for policy rules.
func (r *Report) Facts() policy.Facts {
	f := policy.Facts{
		InitialCost:           r.Projection.InitialCost,
		TotalIncome:           r.Projection.TotalIncome,
		NetProfit:             r.Projection.NetProfit,
		FirstYearIncome:       r.Projection.FirstYearIncome,
		PaybackReached:        r.Projection.Payback.Reached,
		PaybackYears:          r.Projection.Payback.Years,
		PaybackWithinContract: r.Projection.Payback.WithinContract,
		ContractYears:         r.Projection.ContractYears,
		HorizonYears:          r.Projection.HorizonYears,
		CapacityKW:            r.Sizing.CapacityKW,
		PanelCount:            r.Sizing.PanelCount,
		InverterUndersized:    r.Inverter.Undersized,
		Degenerate:            r.Projection.Degenerate,
		DegenerateYear:        r.Projection.DegenerateYear,
		YieldSource:           string(r.Yield.Source),
		YieldFallback:         r.Yield.Fallback,
		SolarRank:             comparison.SolarRank(r.Comparison),
		Confidence:            r.Confidence,
	}
	if r.Carbon != nil {
		f.CO2AvoidedKg = r.Carbon.LifetimeKg
	}
	for _, e := range r.Comparison {
		if !e.Solar {
			f.BestAlternative = e.Name
			f.BestAlternativeProfit = e.NetProfit
			break
		}
	}
	return f
}

// Decision returns the policy decision, or pass when no policy ran.
func (r *Report) Decision() policy.Decision {
	if r.Policy == nil {
		return policy.DecisionPass
	}
	return r.Policy.Decision
}

// RunSummary is a listing row of an archived run.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      string    `json:"profile"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CapacityKW   float64   `json:"capacity_kw"`
	InitialCost  float64   `json:"initial_cost"`
	TotalIncome  float64   `json:"total_income"`
	NetProfit    float64   `json:"net_profit"`
	PaybackYears float64   `json:"payback_years"`
	YieldSource  string    `json:"yield_source"`
	Decision     string    `json:"decision"`
}

// Summary returns the listing row of r.
func (r *Report) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Profile:      r.Profile,
		Latitude:     r.Request.Latitude,
		Longitude:    r.Request.Longitude,
		CapacityKW:   r.Sizing.CapacityKW,
		InitialCost:  r.Projection.InitialCost,
		TotalIncome:  r.Projection.TotalIncome,
		NetProfit:    r.Projection.NetProfit,
		PaybackYears: r.Projection.Payback.Years,
		YieldSource:  string(r.Yield.Source),
		Decision:     string(r.Decision()),
	}
}
