package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/api"
	"github.com/sadeghmontazeri/solar/decision/estimation"
)

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Value:   "*",
				Usage:   "Comma-separated allowed CORS origins",
				EnvVars: []string{"SOLAR_CORS_ORIGINS"},
			},
			&cli.StringFlag{
				Name:    "operator-user",
				Usage:   "Basic auth user for the run archive routes",
				EnvVars: []string{"SOLAR_OPERATOR_USER"},
			},
			&cli.StringFlag{
				Name:    "operator-password",
				Usage:   "Basic auth password for the run archive routes",
				EnvVars: []string{"SOLAR_OPERATOR_PASSWORD"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	svc, err := newServices(context.Background(), c)
	if err != nil {
		return err
	}
	defer svc.Close()

	config := api.DefaultConfig()
	config.Port = c.Int("port")
	config.CORSOrigins = strings.Split(c.String("cors-origins"), ",")
	config.OperatorUser = c.String("operator-user")
	config.OperatorPassword = c.String("operator-password")
	config.Version = version

	var runs estimation.RunStore
	if svc.store != nil {
		runs = svc.store
	}

	server := api.NewServer(svc.engine, runs, config).WithLogger(svc.logger)
	return server.StartWithGracefulShutdown()
}
