package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/decision/tariff"
	"github.com/sadeghmontazeri/solar/pkg/units"
	"github.com/sadeghmontazeri/solar/report"
)

// =============================================================================
// TARIFF COMMAND
// =============================================================================

func tariffCommand() *cli.Command {
	return &cli.Command{
		Name:  "tariff",
		Usage: "Print the guaranteed purchase rate schedule of the active profile",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "months",
				Aliases: []string{"m"},
				Value:   12,
				Usage:   "Number of months to list",
			},
			&cli.BoolFlag{
				Name:  "yearly",
				Usage: "List the average rate of each contract year instead",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runTariff,
	}
}

func runTariff(c *cli.Context) error {
	_, settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	sched, err := tariff.NewSchedule(settings.Tariff)
	if err != nil {
		return err
	}

	months := c.Int("months")
	if months < 1 || months > sched.ContractMonths {
		return fmt.Errorf("--months must be between 1 and %d", sched.ContractMonths)
	}

	asJSON := c.String("format") == "json"
	if c.Bool("yearly") {
		averages := sched.YearlyAverage()
		if asJSON {
			return report.JSON(os.Stdout, averages)
		}
		fmt.Printf("%-6s %s\n", "YEAR", "AVERAGE RATE (toman/kWh)")
		for i, r := range averages {
			fmt.Printf("%-6d %s\n", i+1, units.GroupThousands(fmt.Sprintf("%.2f", r)))
		}
		return nil
	}

	rates := sched.Table(months)
	if asJSON {
		return report.JSON(os.Stdout, rates)
	}
	fmt.Printf("%-6s %-6s %s\n", "MONTH", "YEAR", "RATE (toman/kWh)")
	for _, r := range rates {
		fmt.Printf("%-6d %-6d %s\n", r.Month+1, r.Year, units.GroupThousands(fmt.Sprintf("%.2f", r.Rate)))
	}
	return nil
}
