// Package postgres loads the panel and inverter catalog from PostgreSQL.
// The catalog is read once at startup; the engine never writes to it.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sadeghmontazeri/solar/decision/catalog"
)

// Open connects to PostgreSQL and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS solar_panels (
	name          TEXT PRIMARY KEY,
	position      INTEGER NOT NULL,
	power_min     INTEGER NOT NULL,
	power_max     INTEGER NOT NULL,
	default_power INTEGER NOT NULL,
	length_mm     INTEGER NOT NULL,
	width_mm      INTEGER NOT NULL,
	thickness_mm  INTEGER NOT NULL,
	area_m2       DOUBLE PRECISION NOT NULL,
	efficiency    DOUBLE PRECISION NOT NULL,
	origin        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS solar_inverters (
	brand          TEXT PRIMARY KEY,
	position       INTEGER NOT NULL,
	warranty_years INTEGER NOT NULL,
	origin         TEXT NOT NULL,
	price_per_kw   NUMERIC(20, 2) NOT NULL,
	sizes_kw       INTEGER[] NOT NULL,
	models         TEXT[] NOT NULL
);
`

// EnsureSchema creates the catalog tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// LoadCatalog reads both tables in position order and validates them.
func LoadCatalog(ctx context.Context, db *sql.DB) (*catalog.Catalog, error) {
	panels, err := loadPanels(ctx, db)
	if err != nil {
		return nil, err
	}
	inverters, err := loadInverters(ctx, db)
	if err != nil {
		return nil, err
	}
	return catalog.New(panels, inverters)
}

func loadPanels(ctx context.Context, db *sql.DB) ([]catalog.PanelSpec, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, power_min, power_max, default_power, length_mm, width_mm,
		       thickness_mm, area_m2, efficiency, origin
		FROM solar_panels
		ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query panels: %w", err)
	}
	defer rows.Close()

	var panels []catalog.PanelSpec
	for rows.Next() {
		var p catalog.PanelSpec
		var origin string
		if err := rows.Scan(
			&p.Name, &p.Power.Min, &p.Power.Max, &p.DefaultPower, &p.LengthMM, &p.WidthMM,
			&p.ThicknessMM, &p.AreaM2, &p.Efficiency, &origin,
		); err != nil {
			return nil, fmt.Errorf("failed to scan panel: %w", err)
		}
		p.Origin = catalog.Origin(origin)
		panels = append(panels, p)
	}
	return panels, rows.Err()
}

func loadInverters(ctx context.Context, db *sql.DB) ([]catalog.InverterSpec, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT brand, warranty_years, origin, price_per_kw::TEXT, sizes_kw, models
		FROM solar_inverters
		ORDER BY position, brand`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inverters: %w", err)
	}
	defer rows.Close()

	var inverters []catalog.InverterSpec
	for rows.Next() {
		var (
			brand, origin, price string
			warranty             int
			sizes                []int64
			models               []string
		)
		if err := rows.Scan(&brand, &warranty, &origin, &price, pq.Array(&sizes), pq.Array(&models)); err != nil {
			return nil, fmt.Errorf("failed to scan inverter: %w", err)
		}
		inv, err := buildInverter(brand, warranty, origin, price, sizes, models)
		if err != nil {
			return nil, err
		}
		inverters = append(inverters, inv)
	}
	return inverters, rows.Err()
}

// buildInverter pairs the parallel size and model arrays of a row.
func buildInverter(brand string, warranty int, origin, price string, sizes []int64, models []string) (catalog.InverterSpec, error) {
	if len(sizes) != len(models) {
		return catalog.InverterSpec{}, fmt.Errorf("inverter %q has %d sizes but %d models", brand, len(sizes), len(models))
	}
	pricePerKW, err := decimal.NewFromString(price)
	if err != nil {
		return catalog.InverterSpec{}, fmt.Errorf("inverter %q has invalid price %q: %w", brand, price, err)
	}
	m := make(map[int]string, len(sizes))
	for i, size := range sizes {
		m[int(size)] = models[i]
	}
	return catalog.InverterSpec{
		Brand:         brand,
		Models:        m,
		WarrantyYears: warranty,
		Origin:        origin,
		PricePerKW:    pricePerKW,
	}, nil
}

// inverterArrays is the inverse of buildInverter, in ascending size order.
func inverterArrays(inv catalog.InverterSpec) ([]int64, []string) {
	sizes := inv.Sizes()
	outSizes := make([]int64, len(sizes))
	outModels := make([]string, len(sizes))
	for i, s := range sizes {
		outSizes[i] = int64(s)
		outModels[i] = inv.Models[s]
	}
	return outSizes, outModels
}

// SeedCatalog upserts every entry of cat in one transaction.
func SeedCatalog(ctx context.Context, db *sql.DB, cat *catalog.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, p := range cat.Panels(catalog.OriginAll) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO solar_panels (name, position, power_min, power_max, default_power,
				length_mm, width_mm, thickness_mm, area_m2, efficiency, origin)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (name) DO UPDATE SET
				position = EXCLUDED.position, power_min = EXCLUDED.power_min,
				power_max = EXCLUDED.power_max, default_power = EXCLUDED.default_power,
				length_mm = EXCLUDED.length_mm, width_mm = EXCLUDED.width_mm,
				thickness_mm = EXCLUDED.thickness_mm, area_m2 = EXCLUDED.area_m2,
				efficiency = EXCLUDED.efficiency, origin = EXCLUDED.origin`,
			p.Name, i, p.Power.Min, p.Power.Max, p.DefaultPower,
			p.LengthMM, p.WidthMM, p.ThicknessMM, p.AreaM2, p.Efficiency, string(p.Origin),
		); err != nil {
			return fmt.Errorf("failed to upsert panel %q: %w", p.Name, err)
		}
	}

	for i, inv := range cat.Inverters() {
		sizes, models := inverterArrays(inv)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO solar_inverters (brand, position, warranty_years, origin, price_per_kw, sizes_kw, models)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (brand) DO UPDATE SET
				position = EXCLUDED.position, warranty_years = EXCLUDED.warranty_years,
				origin = EXCLUDED.origin, price_per_kw = EXCLUDED.price_per_kw,
				sizes_kw = EXCLUDED.sizes_kw, models = EXCLUDED.models`,
			inv.Brand, i, inv.WarrantyYears, inv.Origin, inv.PricePerKW.String(), pq.Array(sizes), pq.Array(models),
		); err != nil {
			return fmt.Errorf("failed to upsert inverter %q: %w", inv.Brand, err)
		}
	}

	return tx.Commit()
}
