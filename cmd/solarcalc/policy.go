package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/report"
)

// =============================================================================
// POLICY COMMAND
// =============================================================================

func policyCommand() *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Inspect advisory policies",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List built-in policies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "table",
						Usage:   "Output format (table, json)",
					},
				},
				Action: runPolicyList,
			},
			{
				Name:   "validate",
				Usage:  "Compile the Rego policies in --policies-dir",
				Action: runPolicyValidate,
			},
		},
	}
}

func runPolicyList(c *cli.Context) error {
	policies := policy.NewEngine().Policies()
	if c.String("format") == "json" {
		return report.JSON(os.Stdout, policies)
	}

	fmt.Printf("%-24s %-8s %-10s %s\n", "ID", "SEVERITY", "THRESHOLD", "DESCRIPTION")
	for _, p := range policies {
		fmt.Printf("%-24s %-8s %-10g %s\n", p.ID, p.Severity, p.Threshold, truncate(p.Description, 60))
	}
	return nil
}

func runPolicyValidate(c *cli.Context) error {
	dir := c.String("policies-dir")
	if dir == "" {
		return fmt.Errorf("--policies-dir is required")
	}
	if err := policy.NewRegoEvaluator(dir).ValidatePolicies(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✅ policies in %s compile\n", dir)
	return nil
}
