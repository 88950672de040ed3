package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/pkg/units"
	"github.com/sadeghmontazeri/solar/report"
)

// =============================================================================
// RUNS COMMAND
// =============================================================================

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Browse estimation runs archived in ClickHouse",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   20,
						Usage:   "Maximum runs to list",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "table",
						Usage:   "Output format (table, json)",
					},
				},
				Action: runRunsList,
			},
			{
				Name:      "show",
				Usage:     "Show one archived report",
				ArgsUsage: "<run-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "table",
						Usage:   "Output format (table, json, markdown, html)",
					},
				},
				Action: runRunsShow,
			},
		},
	}
}

func runRunsList(c *cli.Context) error {
	ctx := context.Background()
	store, err := openArchive(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, c.Int("limit"))
	if err != nil {
		return err
	}

	if c.String("format") == "json" {
		return report.JSON(os.Stdout, runs)
	}

	fmt.Printf("%-36s  %-16s  %-9s  %-8s  %-14s  %-8s  %s\n", "ID", "CREATED", "PROFILE", "KW", "NET PROFIT", "PAYBACK", "DECISION")
	for _, r := range runs {
		payback := "-"
		if r.PaybackYears > 0 {
			payback = fmt.Sprintf("%.1f y", r.PaybackYears)
		}
		fmt.Printf("%-36s  %-16s  %-9s  %-8.2f  %-14s  %-8s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Profile, r.CapacityKW,
			units.FormatTomanFloat(r.NetProfit), payback, r.Decision,
		)
	}
	return nil
}

func runRunsShow(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one run id")
	}
	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	store, err := openArchive(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer store.Close()

	rep, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	return report.Render(os.Stdout, format, rep, report.Options{})
}
