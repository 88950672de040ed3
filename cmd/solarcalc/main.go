// solarcalc - rooftop solar return estimator
//
// Usage:
//
//	solarcalc estimate --lat 35.69 --lon 51.39 --roof 40 [options]
//	solarcalc serve --port 8080
//	solarcalc catalog panels --origin domestic
//	solarcalc tariff --months 24
//	solarcalc runs list
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/sadeghmontazeri/solar/db/clickhouse"
	"github.com/sadeghmontazeri/solar/db/postgres"
	"github.com/sadeghmontazeri/solar/decision/carbon"
	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/decision/yield"
	"github.com/sadeghmontazeri/solar/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := platform.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:    "solarcalc",
		Usage:   "Rooftop solar sizing, yield and return-on-investment estimator",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SOLAR_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-console",
				Usage:   "Human-readable log output instead of JSON",
				EnvVars: []string{"SOLAR_LOG_CONSOLE"},
			},
			&cli.StringFlag{
				Name:    "profile",
				Value:   platform.DefaultProfileName,
				Usage:   "Tariff profile: a built-in name (satba-20, satba-8) or a YAML file",
				EnvVars: []string{"SOLAR_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "catalog-file",
				Usage:   "YAML catalog replacing the built-in panel and inverter tables",
				EnvVars: []string{"SOLAR_CATALOG_FILE"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "PostgreSQL DSN for the panel and inverter catalog",
				EnvVars: []string{"SOLAR_POSTGRES_DSN", "DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:    "offline",
				Usage:   "Skip the satellite yield lookup and use the local approximation",
				EnvVars: []string{"SOLAR_OFFLINE"},
			},
			&cli.StringFlag{
				Name:    "carbon-zone",
				Value:   carbon.DefaultZone,
				Usage:   "Electricity Maps grid zone used for avoided emissions",
				EnvVars: []string{"SOLAR_CARBON_ZONE"},
			},
			&cli.StringFlag{
				Name:    "electricitymaps-token",
				Usage:   "Electricity Maps API token for live grid intensity",
				EnvVars: []string{"ELECTRICITYMAPS_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "policies-dir",
				Usage:   "Directory of operator Rego policies (package solar)",
				EnvVars: []string{"SOLAR_POLICIES_DIR"},
			},
			&cli.BoolFlag{
				Name:    "archive",
				Usage:   "Archive estimation runs in ClickHouse",
				EnvVars: []string{"SOLAR_ARCHIVE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-dsn",
				Usage:   "ClickHouse DSN (overrides host, port, database, user and password)",
				EnvVars: []string{"CLICKHOUSE_DSN"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "solar",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			estimateCommand(),
			sizeCommand(),
			serveCommand(),
			catalogCommand(),
			tariffCommand(),
			runsCommand(),
			policyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

func newLogger(c *cli.Context) zerolog.Logger {
	return platform.InitLogger(c.String("log-level"), c.Bool("log-console"))
}

func loadSettings(c *cli.Context) (platform.Profile, estimation.Settings, error) {
	profile, err := platform.LoadProfile(c.String("profile"))
	if err != nil {
		return platform.Profile{}, estimation.Settings{}, err
	}
	profile = profile.ApplyEnv()
	if c.IsSet("offline") {
		profile.Yield.Offline = c.Bool("offline")
	}
	settings, err := estimation.SettingsFromProfile(profile)
	if err != nil {
		return platform.Profile{}, estimation.Settings{}, err
	}
	return profile, settings, nil
}

// loadCatalog resolves the catalog source: Postgres, then a YAML file, then the built-in tables.
func loadCatalog(ctx context.Context, c *cli.Context) (*catalog.Catalog, error) {
	if dsn := c.String("postgres-dsn"); dsn != "" {
		db, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return postgres.LoadCatalog(ctx, db)
	}
	if path := c.String("catalog-file"); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Default(), nil
}

func openPostgres(ctx context.Context, c *cli.Context) (*sql.DB, error) {
	dsn := c.String("postgres-dsn")
	if dsn == "" {
		return nil, fmt.Errorf("--postgres-dsn is required")
	}
	return postgres.Open(ctx, dsn)
}

func newResolver(profile platform.Profile, logger zerolog.Logger) *yield.Resolver {
	local := yield.NewLocalEstimator()
	if profile.Yield.Offline {
		return yield.NewResolver(nil, local, logger)
	}

	httpClient := platform.NewHTTPClient(profile.Yield.Retries, profile.Yield.Timeout)
	httpClient.Logger = logger
	pvgis := yield.NewPVGISClient(
		yield.WithEndpoint(profile.Yield.Endpoint),
		yield.WithSystemLoss(profile.Yield.SystemLossPct),
		yield.WithHTTPClient(httpClient),
		yield.WithPVGISLogger(logger),
	)
	cached := yield.NewCachedProvider(pvgis, yield.NewCache(profile.Yield.CacheTTL), logger)
	return yield.NewResolver(cached, local, logger)
}

func newCarbonSource(c *cli.Context, profile platform.Profile, logger zerolog.Logger) carbon.IntensitySource {
	token := c.String("electricitymaps-token")
	if token == "" || profile.Yield.Offline {
		return carbon.StaticSource{}
	}
	return carbon.NewElectricityMapsClient(token, logger)
}

func openArchive(ctx context.Context, c *cli.Context) (*clickhouse.Store, error) {
	var (
		store *clickhouse.Store
		err   error
	)
	if dsn := c.String("clickhouse-dsn"); dsn != "" {
		store, err = clickhouse.NewStoreFromDSN(dsn)
	} else {
		store, err = clickhouse.NewStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
	}
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newPolicyEngine(c *cli.Context, logger zerolog.Logger) *policy.Engine {
	return policy.NewEngine().
		WithLogger(logger).
		WithRegoDir(c.String("policies-dir"))
}

// services is everything a command needs to run estimates.
type services struct {
	engine *estimation.Engine
	store  *clickhouse.Store
	logger zerolog.Logger
}

func (s *services) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func newServices(ctx context.Context, c *cli.Context) (*services, error) {
	logger := newLogger(c)

	profile, settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	engine, err := estimation.NewEngine(cat, settings, newResolver(profile, logger))
	if err != nil {
		return nil, err
	}
	engine.WithLogger(logger).
		WithPolicy(newPolicyEngine(c, logger)).
		WithCarbon(newCarbonSource(c, profile, logger), c.String("carbon-zone"))

	svc := &services{engine: engine, logger: logger}
	if c.Bool("archive") || c.String("clickhouse-dsn") != "" {
		store, err := openArchive(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to open run archive: %w", err)
		}
		engine.WithArchive(store)
		svc.store = store
	}
	return svc, nil
}
