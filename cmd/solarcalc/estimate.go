package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/pkg/units"
	"github.com/sadeghmontazeri/solar/report"
)

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  "lat",
			Usage: "Site latitude (defaults to Tehran)",
		},
		&cli.Float64Flag{
			Name:  "lon",
			Usage: "Site longitude (defaults to Tehran)",
		},
		&cli.Float64Flag{
			Name:    "roof",
			Aliases: []string{"r"},
			Value:   estimation.DefaultRoofAreaM2,
			Usage:   "Roof area in m²",
		},
		&cli.Float64Flag{
			Name:  "tilt",
			Value: estimation.DefaultTiltDeg,
			Usage: "Panel tilt in degrees",
		},
		&cli.StringFlag{
			Name:  "shading",
			Value: "none",
			Usage: "Shading level (none, light, moderate)",
		},
		&cli.StringFlag{
			Name:  "origin",
			Usage: "Panel origin filter (foreign, domestic)",
		},
		&cli.StringFlag{
			Name:  "panel",
			Usage: "Panel name from the catalog (defaults to the first panel for the origin)",
		},
		&cli.IntFlag{
			Name:  "power",
			Usage: "Panel power in W (defaults to the panel's nominal power)",
		},
		&cli.StringFlag{
			Name:    "inverter",
			Aliases: []string{"i"},
			Usage:   "Inverter brand (defaults to the first brand in the catalog)",
		},
	}
}

func requestFromFlags(c *cli.Context) estimation.Request {
	return estimation.Request{
		Latitude:      c.Float64("lat"),
		Longitude:     c.Float64("lon"),
		RoofAreaM2:    c.Float64("roof"),
		TiltDeg:       c.Float64("tilt"),
		Shading:       c.String("shading"),
		PanelOrigin:   c.String("origin"),
		PanelName:     c.String("panel"),
		PanelPowerW:   c.Int("power"),
		InverterBrand: c.String("inverter"),
	}
}

func estimateCommand() *cli.Command {
	flags := append(requestFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json, markdown, html)",
		},
		&cli.BoolFlag{
			Name:  "persian-digits",
			Usage: "Render numbers with Persian digits",
		},
		&cli.Float64Flag{
			Name:  "min-profit",
			Usage: "Deny estimates whose horizon net profit is below this amount (toman)",
		},
		&cli.BoolFlag{
			Name:  "skip-policy",
			Value: false,
			Usage: "Skip policy evaluation",
		},
	)

	return &cli.Command{
		Name:   "estimate",
		Usage:  "Size a rooftop array and project its return against the tariff contract",
		Flags:  flags,
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	ctx := context.Background()

	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	svc, err := newServices(ctx, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.Bool("skip-policy") {
		svc.engine.WithPolicy(nil)
	} else if c.IsSet("min-profit") {
		pe := newPolicyEngine(c, svc.logger)
		pe.SetThreshold("min-net-profit", c.Float64("min-profit"))
		svc.engine.WithPolicy(pe)
	}

	rep, err := svc.engine.Estimate(ctx, requestFromFlags(c))
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "☀️  %d panels, %.2f kW, yield from %s\n",
		rep.Sizing.PanelCount, rep.Sizing.CapacityKW, rep.Yield.Source)

	if err := report.Render(os.Stdout, format, rep, report.Options{PersianDigits: c.Bool("persian-digits")}); err != nil {
		return err
	}

	if rep.Decision() == policy.DecisionDeny {
		return cli.Exit("❌ estimate denied by policy", 2)
	}
	return nil
}

// =============================================================================
// SIZE COMMAND
// =============================================================================

func sizeCommand() *cli.Command {
	flags := append(requestFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json)",
		},
	)

	return &cli.Command{
		Name:   "size",
		Usage:  "Show the array, inverter and cost for a roof without a yield lookup",
		Flags:  flags,
		Action: runSize,
	}
}

func runSize(c *cli.Context) error {
	ctx := context.Background()

	_, settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	engine, err := estimation.NewEngine(cat, settings, nil)
	if err != nil {
		return err
	}

	preview, err := engine.Size(requestFromFlags(c))
	if err != nil {
		return err
	}

	if c.String("format") == "json" {
		return report.JSON(os.Stdout, preview)
	}

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    🔧 SYSTEM SIZING                           ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Panel:                 %-38s ║\n", truncate(preview.Panel.Name, 38))
	fmt.Printf("║  Panel power:           %-38s ║\n", fmt.Sprintf("%d W", preview.Sizing.PanelPowerW))
	fmt.Printf("║  Usable area:           %-38s ║\n", fmt.Sprintf("%.1f of %.1f m²", preview.Sizing.UsableAreaM2, preview.Sizing.RoofAreaM2))
	fmt.Printf("║  Panels:                %-38d ║\n", preview.Sizing.PanelCount)
	fmt.Printf("║  Capacity:              %-38s ║\n", fmt.Sprintf("%.2f kW", preview.Sizing.CapacityKW))
	fmt.Printf("║  Inverter:              %-38s ║\n", fmt.Sprintf("%s %s", preview.Inverter.Brand, preview.Inverter.Model))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Panels cost:           %-38s ║\n", units.FormatToman(preview.Cost.PanelCost)+" toman")
	fmt.Printf("║  Inverter cost:         %-38s ║\n", units.FormatToman(preview.Cost.InverterCost)+" toman")
	fmt.Printf("║  Total:                 %-38s ║\n", units.FormatToman(preview.Cost.Total)+" toman")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	for _, w := range preview.Warnings {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", w)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
