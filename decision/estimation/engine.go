// Package estimation runs a rooftop installation through sizing, yield,
// projection, comparison and advisory policies, and produces a Report.
package estimation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadeghmontazeri/solar/decision/carbon"
	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/comparison"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/decision/projection"
	"github.com/sadeghmontazeri/solar/decision/sizing"
	"github.com/sadeghmontazeri/solar/decision/tariff"
	"github.com/sadeghmontazeri/solar/decision/yield"
	"github.com/sadeghmontazeri/solar/pkg/confidence"
	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// ErrRunNotFound is returned by a RunStore for an unknown run ID.
var ErrRunNotFound = errors.New("estimation run not found")

// RunArchive stores finished reports.
type RunArchive interface {
	SaveRun(ctx context.Context, r *Report) error
}

// RunStore is a RunArchive that can read runs back.
type RunStore interface {
	RunArchive
	GetRun(ctx context.Context, id uuid.UUID) (*Report, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// Engine is the estimation orchestrator. It holds no per-request state.
type Engine struct {
	catalog  *catalog.Catalog
	settings Settings
	schedule tariff.Schedule
	sizer    sizing.Sizer
	resolver *yield.Resolver
	policy   *policy.Engine
	carbon   carbon.IntensitySource
	zone     string
	archive  RunArchive
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine creates an engine. A nil resolver uses the local approximation only.
func NewEngine(cat *catalog.Catalog, settings Settings, resolver *yield.Resolver) (*Engine, error) {
	if cat == nil {
		cat = catalog.Default()
	}
	schedule, err := tariff.NewSchedule(settings.Tariff)
	if err != nil {
		return nil, err
	}
	if settings.HorizonYears < settings.Tariff.ContractYears {
		return nil, solarerrors.NewConfigurationError("horizon_years", "horizon %d is shorter than contract %d", settings.HorizonYears, settings.Tariff.ContractYears)
	}
	if settings.Benchmarks == nil {
		settings.Benchmarks = comparison.DefaultBenchmarks()
	}
	if resolver == nil {
		resolver = yield.NewResolver(nil, yield.NewLocalEstimator(), zerolog.Nop())
	}
	return &Engine{
		catalog:  cat,
		settings: settings,
		schedule: schedule,
		sizer:    sizing.Sizer{OccupancyRatio: settings.OccupancyRatio},
		resolver: resolver,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}, nil
}

// WithLogger sets the logger
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.logger = l
	return e
}

// WithArchive stores every finished report
func (e *Engine) WithArchive(a RunArchive) *Engine {
	e.archive = a
	return e
}

// WithPolicy annotates reports with an advisory decision
func (e *Engine) WithPolicy(p *policy.Engine) *Engine {
	e.policy = p
	return e
}

// WithCarbon adds avoided grid emissions for zone to every report
func (e *Engine) WithCarbon(src carbon.IntensitySource, zone string) *Engine {
	e.carbon = src
	e.zone = zone
	return e
}

// WithClock replaces the time source used for report timestamps
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Catalog returns the catalog the engine sizes against
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Settings returns the engine settings
func (e *Engine) Settings() Settings { return e.settings }

// Schedule returns the tariff schedule
func (e *Engine) Schedule() tariff.Schedule { return e.schedule }

// Size validates req and sizes the array without a yield lookup.
func (e *Engine) Size(req Request) (*SizingPreview, error) {
	r, err := resolve(e.catalog, req)
	if err != nil {
		return nil, err
	}
	return e.size(r)
}

func (e *Engine) size(r resolved) (*SizingPreview, error) {
	s, err := e.sizer.Size(r.RoofAreaM2, r.panel, r.PanelPowerW)
	if err != nil {
		return nil, err
	}
	if s.PanelCount == 0 {
		return nil, solarerrors.NewInputOutOfRangeError("roof_area_m2", "roof of %v m² fits no %s panel", r.RoofAreaM2, r.panel.Name)
	}

	inv, err := sizing.MatchInverter(s.CapacityKW, r.inverter)
	if err != nil {
		return nil, err
	}

	warnings := append([]string(nil), r.warnings...)
	if inv.Undersized {
		e.logger.Warn().
			Float64("capacity_kw", s.CapacityKW).
			Str("brand", inv.Brand).
			Int("size_kw", inv.SizeKW).
			Msg("inverter undersized")
		warnings = append(warnings, inv.Warning)
	}

	return &SizingPreview{
		Request:  r.Request,
		Panel:    r.panel,
		Sizing:   s,
		Inverter: inv,
		Cost:     sizing.InstallationCost(s, e.settings.CostPerWatt, inv),
		Warnings: warnings,
	}, nil
}

// Estimate runs the full pipeline. Yield lookup failures fall back to the
// local approximation and archive failures are logged; neither is returned.
func (e *Engine) Estimate(ctx context.Context, req Request) (*Report, error) {
	r, err := resolve(e.catalog, req)
	if err != nil {
		return nil, err
	}
	preview, err := e.size(r)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.New(),
		CreatedAt: e.now().UTC(),
		Profile:   e.settings.ProfileName,
		Request:   preview.Request,
		Panel:     preview.Panel,
		Sizing:    preview.Sizing,
		Inverter:  preview.Inverter,
		Cost:      preview.Cost,
		Tariff:    e.schedule,
		Warnings:  preview.Warnings,
	}

	est := e.resolver.Resolve(ctx, yield.Request{
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		CapacityKW: preview.Sizing.CapacityKW,
		TiltDeg:    r.TiltDeg,
	})
	est = yield.ApplyShading(est, r.shading)
	report.Yield = est
	if est.Fallback {
		report.Warnings = append(report.Warnings, est.Note)
	}

	proj, err := projection.Project(projection.Input{
		InitialCost:       preview.Cost.Total.InexactFloat64(),
		MonthlyProduction: est.MonthlyKWh,
		YearlyProduction:  est.YearlyKWh,
		ContractYears:     e.settings.Tariff.ContractYears,
		HorizonYears:      e.settings.HorizonYears,
		DegradationRate:   e.settings.DegradationRate,
		Rate:              e.schedule.Rate,
	})
	if err != nil {
		return nil, err
	}
	if derr := proj.DegenerateError(e.settings.DegradationRate); derr != nil {
		e.logger.Warn().Err(derr).Str("run_id", report.ID.String()).Msg("degenerate projection")
	}
	report.Projection = proj
	report.Warnings = append(report.Warnings, proj.Warnings...)

	report.Confidence = estimateConfidence(est, r.shading, len(preview.Warnings))
	if e.carbon != nil {
		report.Carbon = e.avoidedEmissions(ctx, proj)
	}

	report.Comparison = comparison.Compare(proj.InitialCost, proj.TotalIncome, e.settings.HorizonYears, e.settings.Benchmarks)

	if e.policy != nil {
		decision, err := e.policy.Evaluate(ctx, report.Facts())
		if err != nil {
			report.Warnings = append(report.Warnings, "operator policies could not be fully evaluated: "+err.Error())
		}
		report.Policy = decision
		if decision != nil && decision.Decision == policy.DecisionDeny {
			e.logger.Warn().Str("run_id", report.ID.String()).Int("violations", len(decision.Violations)).Msg("policy denied estimate")
		}
	}

	if e.archive != nil {
		if err := e.archive.SaveRun(ctx, report); err != nil {
			e.logger.Error().Err(err).Str("run_id", report.ID.String()).Msg("failed to archive estimation run")
		}
	}

	e.logger.Info().
		Str("run_id", report.ID.String()).
		Float64("capacity_kw", report.Sizing.CapacityKW).
		Str("yield_source", string(est.Source)).
		Float64("net_profit", proj.NetProfit).
		Msg("estimation complete")

	return report, nil
}

func (e *Engine) avoidedEmissions(ctx context.Context, proj projection.Result) *carbon.Footprint {
	in, err := e.carbon.Intensity(ctx, e.zone)
	if err != nil {
		e.logger.Warn().Err(err).Str("zone", e.zone).Msg("carbon intensity unavailable")
		return nil
	}
	yearly := make([]float64, len(proj.Years))
	for i, y := range proj.Years {
		yearly[i] = y.ProductionKWh
	}
	fp := carbon.Avoided(in, yearly)
	return &fp
}

// estimateConfidence scores the report: satellite yield beats the local
// approximation, and every input the engine had to adjust costs 10%.
func estimateConfidence(est yield.Estimate, shading yield.Shading, adjustments int) float64 {
	yieldScore := confidence.HighConfidence
	if est.Source != yield.SourcePVGIS {
		yieldScore = confidence.LowConfidence
	}
	if est.Fallback {
		yieldScore = confidence.Decay(yieldScore, 1)
	}
	if shading != yield.ShadingNone {
		adjustments++
	}
	inputScore := confidence.Decay(confidence.HighConfidence, adjustments)
	return confidence.Clamp(confidence.Aggregate(yieldScore, inputScore))
}
