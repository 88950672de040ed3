// Package report renders estimation reports as text tables, JSON, Markdown or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/decision/projection"
	"github.com/sadeghmontazeri/solar/decision/yield"
	"github.com/sadeghmontazeri/solar/pkg/confidence"
	"github.com/sadeghmontazeri/solar/pkg/units"
)

// Format is an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name; empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatMarkdown, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json, markdown or html)", s)
}

// ContentType is the HTTP content type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Options controls presentation.
type Options struct {
	PersianDigits bool
}

func (o Options) digits(s string) string {
	if o.PersianDigits {
		return units.PersianDigits(s)
	}
	return s
}

func (o Options) money(v float64) string {
	return o.digits(units.FormatTomanFloat(v))
}

func (o Options) kwh(v float64) string {
	return o.digits(units.GroupThousands(strconv.FormatInt(int64(v), 10)))
}

func (o Options) payback(p projection.Payback, horizon int) string {
	if !p.Reached {
		return o.digits(fmt.Sprintf("> %d years", horizon))
	}
	return o.digits(fmt.Sprintf("%d years %d months", p.WholeYears, p.Months))
}

// Render writes r in format f.
func Render(w io.Writer, f Format, r *estimation.Report, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, r)
	case FormatMarkdown:
		return Markdown(w, r, opts)
	case FormatHTML:
		return HTML(w, r, opts)
	default:
		return Table(w, r, opts)
	}
}

// JSON writes the full report as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// TABLE
// =============================================================================

const (
	boxTop    = "╔══════════════════════════════════════════════════════════════╗"
	boxMiddle = "╠══════════════════════════════════════════════════════════════╣"
	boxBottom = "╚══════════════════════════════════════════════════════════════╝"
)

// Table writes a boxed terminal summary.
func Table(w io.Writer, r *estimation.Report, opts Options) error {
	p := r.Projection
	ew := &errWriter{w: w}

	ew.println()
	ew.println(boxTop)
	ew.println("║                  ☀️  SOLAR RETURN ESTIMATE                     ║")
	ew.println(boxMiddle)
	ew.row("Panel", fmt.Sprintf("%d × %s @ %d W", r.Sizing.PanelCount, truncate(r.Panel.Name, 20), r.Sizing.PanelPowerW))
	ew.row("Capacity", opts.digits(fmt.Sprintf("%.2f kW", r.Sizing.CapacityKW)))
	ew.row("Inverter", fmt.Sprintf("%s %s (%d kW)", r.Inverter.Brand, r.Inverter.Model, r.Inverter.SizeKW))
	ew.row("Total cost", opts.money(p.InitialCost)+" toman")
	ew.row("Yield source", yieldLabel(r.Yield))
	ew.row("First-year production", opts.kwh(p.FirstYearProduction)+" kWh")
	ew.row("First-year income", opts.money(p.FirstYearIncome)+" toman")
	ew.row("Payback", opts.payback(p.Payback, p.HorizonYears))
	ew.row(fmt.Sprintf("%d-year profit", p.HorizonYears), opts.money(p.NetProfit)+" toman")
	ew.row("Confidence", opts.digits(fmt.Sprintf("%.0f%% (%s)", r.Confidence*100, confidence.Label(r.Confidence))))
	if r.Carbon != nil {
		ew.row("CO₂ avoided", opts.digits(fmt.Sprintf("%.1f t over %d years", r.Carbon.LifetimeTonnes, r.Carbon.ProductionYears)))
	}
	ew.println(boxMiddle)

	ew.println("║  YEAR   PRODUCTION (kWh)          INCOME (toman)               ║")
	ew.println(boxMiddle)
	for _, y := range p.Years {
		ew.printf("║  %-5s  %-24s  %-27s ║\n", opts.digits(strconv.Itoa(y.Year)), opts.kwh(y.ProductionKWh), opts.money(y.Income))
	}
	ew.println(boxMiddle)

	ew.println("║  INVESTMENT COMPARISON                                        ║")
	ew.println(boxMiddle)
	for _, e := range r.Comparison {
		ew.printf("║  %d. %-24s  %-30s ║\n", e.Rank, truncate(e.Name, 24), opts.money(e.NetProfit))
	}

	if r.Policy != nil {
		ew.println(boxMiddle)
		ew.row("Policy result", policyIcon(r.Policy.Decision))
		for _, v := range r.Policy.Violations {
			ew.printf("║  ❌ %-57s ║\n", truncate(v.Message, 57))
		}
		for _, warn := range r.Policy.Warnings {
			ew.printf("║  ⚠️  %-56s ║\n", truncate(warn.Message, 56))
		}
	}
	ew.println(boxBottom)

	for _, warn := range r.Warnings {
		ew.printf("⚠️  %s\n", warn)
	}
	return ew.err
}

func (ew *errWriter) row(label, value string) {
	ew.printf("║  %-24s %-35s ║\n", label+":", value)
}

func yieldLabel(e yield.Estimate) string {
	if e.Fallback {
		return string(e.Source) + " (fallback)"
	}
	return string(e.Source)
}

func policyIcon(d policy.Decision) string {
	switch d {
	case policy.DecisionWarn:
		return "⚠️  WARN"
	case policy.DecisionDeny:
		return "❌ DENY"
	}
	return "✅ PASS"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s ...string) {
	ew.printf("%s\n", strings.Join(s, ""))
}
