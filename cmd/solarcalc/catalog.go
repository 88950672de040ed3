package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/db/postgres"
	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/pkg/units"
	"github.com/sadeghmontazeri/solar/report"
)

// =============================================================================
// CATALOG COMMAND
// =============================================================================

func catalogCommand() *cli.Command {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "table",
		Usage:   "Output format (table, json)",
	}

	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect and manage the panel and inverter catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "panels",
				Usage: "List solar panels",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "origin",
						Usage: "Filter by origin (foreign, domestic)",
					},
					formatFlag,
				},
				Action: runCatalogPanels,
			},
			{
				Name:   "inverters",
				Usage:  "List inverter brands and their sizes",
				Flags:  []cli.Flag{formatFlag},
				Action: runCatalogInverters,
			},
			{
				Name:   "seed",
				Usage:  "Create the Postgres catalog tables and load the built-in (or --catalog-file) tables",
				Action: runCatalogSeed,
			},
		},
	}
}

func runCatalogPanels(c *cli.Context) error {
	origin := catalog.Origin(c.String("origin"))
	if !origin.Valid() {
		return fmt.Errorf("unknown origin %q (want foreign or domestic)", origin)
	}
	cat, err := loadCatalog(context.Background(), c)
	if err != nil {
		return err
	}
	panels := cat.Panels(origin)

	if c.String("format") == "json" {
		return report.JSON(os.Stdout, panels)
	}

	fmt.Printf("%-34s %-10s %-8s %-8s %-7s %s\n", "PANEL", "POWER (W)", "AREA m²", "EFF %", "ORIGIN", "SIZE (mm)")
	for _, p := range panels {
		fmt.Printf("%-34s %-10s %-8.2f %-8.1f %-7s %dx%dx%d\n",
			truncate(p.Name, 34),
			fmt.Sprintf("%d-%d", p.Power.Min, p.Power.Max),
			p.AreaM2, p.Efficiency, p.Origin,
			p.LengthMM, p.WidthMM, p.ThicknessMM,
		)
	}
	return nil
}

func runCatalogInverters(c *cli.Context) error {
	cat, err := loadCatalog(context.Background(), c)
	if err != nil {
		return err
	}
	inverters := cat.Inverters()

	if c.String("format") == "json" {
		return report.JSON(os.Stdout, inverters)
	}

	fmt.Printf("%-10s %-9s %-9s %-16s %s\n", "BRAND", "ORIGIN", "WARRANTY", "PRICE / kW", "SIZES (kW)")
	for _, inv := range inverters {
		sizes := make([]string, 0, len(inv.Models))
		for _, s := range inv.Sizes() {
			sizes = append(sizes, fmt.Sprint(s))
		}
		fmt.Printf("%-10s %-9s %-9s %-16s %s\n",
			inv.Brand, inv.Origin,
			fmt.Sprintf("%d years", inv.WarrantyYears),
			units.GroupThousands(inv.PricePerKW.StringFixed(0)),
			strings.Join(sizes, ", "),
		)
	}
	return nil
}

func runCatalogSeed(c *cli.Context) error {
	ctx := context.Background()
	logger := newLogger(c)

	cat := catalog.Default()
	if path := c.String("catalog-file"); path != "" {
		var err error
		if cat, err = catalog.LoadFile(path); err != nil {
			return err
		}
	}

	db, err := openPostgres(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := postgres.SeedCatalog(ctx, db, cat); err != nil {
		return err
	}

	logger.Info().
		Int("panels", len(cat.Panels(catalog.OriginAll))).
		Int("inverters", len(cat.Inverters())).
		Msg("catalog seeded")
	return nil
}
