package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/yield"
	"github.com/sadeghmontazeri/solar/pkg/confidence"
)

// Markdown writes the report as GitHub-flavored Markdown.
func Markdown(w io.Writer, r *estimation.Report, opts Options) error {
	p := r.Projection
	var b strings.Builder

	b.WriteString("## ☀️ Solar Return Estimate\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| **Location** | %s, %s |\n", opts.digits(fmt.Sprintf("%.4f", r.Request.Latitude)), opts.digits(fmt.Sprintf("%.4f", r.Request.Longitude)))
	fmt.Fprintf(&b, "| **Roof area** | %s m² |\n", opts.digits(fmt.Sprintf("%.0f", r.Request.RoofAreaM2)))
	fmt.Fprintf(&b, "| **Panels** | %d × %s @ %d W |\n", r.Sizing.PanelCount, r.Panel.Name, r.Sizing.PanelPowerW)
	fmt.Fprintf(&b, "| **Capacity** | %s kW |\n", opts.digits(fmt.Sprintf("%.2f", r.Sizing.CapacityKW)))
	fmt.Fprintf(&b, "| **Inverter** | %s %s (%d kW, %d-year warranty) |\n", r.Inverter.Brand, r.Inverter.Model, r.Inverter.SizeKW, r.Inverter.WarrantyYears)
	fmt.Fprintf(&b, "| **Total cost** | %s toman |\n", opts.money(p.InitialCost))
	fmt.Fprintf(&b, "| **Yield source** | %s |\n", yieldLabel(r.Yield))
	fmt.Fprintf(&b, "| **First-year income** | %s toman |\n", opts.money(p.FirstYearIncome))
	fmt.Fprintf(&b, "| **Payback** | %s |\n", opts.payback(p.Payback, p.HorizonYears))
	fmt.Fprintf(&b, "| **%d-year profit** | %s toman |\n", p.HorizonYears, opts.money(p.NetProfit))
	fmt.Fprintf(&b, "| **Confidence** | %s |\n", opts.digits(fmt.Sprintf("%.0f%% (%s)", r.Confidence*100, confidence.Label(r.Confidence))))
	if r.Carbon != nil {
		fmt.Fprintf(&b, "| **CO₂ avoided** | %s |\n", opts.digits(fmt.Sprintf("%.1f t over %d years (%.0f g/kWh, %s)",
			r.Carbon.LifetimeTonnes, r.Carbon.ProductionYears, r.Carbon.Intensity.GramsPerKWh, r.Carbon.Intensity.Source)))
	}
	if r.Policy != nil {
		fmt.Fprintf(&b, "| **Policy result** | %s |\n", r.Policy.Decision)
	}

	b.WriteString("\n### 📅 Monthly Production (year 1)\n\n")
	b.WriteString("| Month | kWh |\n")
	b.WriteString("|-------|-----|\n")
	for _, m := range yield.MonthOrder {
		v, ok := r.Yield.MonthlyKWh[m]
		if !ok {
			v = r.Yield.YearlyKWh / 12
		}
		fmt.Fprintf(&b, "| %s | %s |\n", m, opts.kwh(v))
	}

	b.WriteString("\n### 📈 Yearly Projection\n\n")
	b.WriteString("| Year | Production (kWh) | Income (toman) | Cumulative (toman) |\n")
	b.WriteString("|------|------------------|----------------|--------------------|\n")
	for _, y := range p.Years {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", opts.digits(fmt.Sprint(y.Year)), opts.kwh(y.ProductionKWh), opts.money(y.Income), opts.money(y.CumulativeIncome))
	}

	b.WriteString("\n### 💹 Investment Comparison\n\n")
	b.WriteString("| Rank | Investment | Total value (toman) | Net profit (toman) |\n")
	b.WriteString("|------|------------|---------------------|--------------------|\n")
	for _, e := range r.Comparison {
		name := e.Name
		if e.Solar {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", e.Rank, name, opts.money(e.TotalValue), opts.money(e.NetProfit))
	}

	if r.Policy != nil && len(r.Policy.Violations) > 0 {
		b.WriteString("\n### ❌ Policy Violations\n\n")
		for _, v := range r.Policy.Violations {
			fmt.Fprintf(&b, "- **%s**: %s\n", v.PolicyName, v.Message)
		}
	}

	var warnings []string
	warnings = append(warnings, r.Warnings...)
	if r.Policy != nil {
		for _, pw := range r.Policy.Warnings {
			warnings = append(warnings, pw.Message)
		}
	}
	if len(warnings) > 0 {
		b.WriteString("\n### ⚠️ Warnings\n\n")
		for _, msg := range warnings {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the Markdown report into a standalone HTML page.
func HTML(w io.Writer, r *estimation.Report, opts Options) error {
	var md bytes.Buffer
	if err := Markdown(&md, r, opts); err != nil {
		return err
	}

	dir := "ltr"
	if opts.PersianDigits {
		dir = "rtl"
	}
	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html dir=%q>\n<head><meta charset=\"utf-8\"><title>Solar Return Estimate</title></head>\n<body>\n", dir); err != nil {
		return err
	}
	if err := markdownRenderer.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
