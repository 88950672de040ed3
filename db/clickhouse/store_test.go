package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/yield"
)

func sampleReport(t *testing.T) *estimation.Report {
	t.Helper()
	e, err := estimation.NewEngine(nil, estimation.DefaultSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2024, 9, 1, 10, 30, 0, 0, time.UTC)
	r, err := e.WithClock(func() time.Time { return fixed }).Estimate(context.Background(), estimation.Request{Shading: "moderate"})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRunRowFlattensReport(t *testing.T) {
	r := sampleReport(t)
	row, err := newRunRow(r)
	if err != nil {
		t.Fatal(err)
	}
	if row.ID != r.ID || row.PanelCount != 8 || row.CapacityKW != 4.64 || row.Shading != "moderate" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.YieldSource != string(yield.SourceLocal) || row.Decision != "pass" {
		t.Fatalf("source=%s decision=%s", row.YieldSource, row.Decision)
	}
	if !row.InitialCost.Equal(r.Cost.Total) {
		t.Fatalf("initial cost = %s, want %s", row.InitialCost, r.Cost.Total)
	}
	if row.PaybackReached != 1 {
		t.Fatalf("payback reached = %d", row.PaybackReached)
	}
	if row.Confidence != r.Confidence || row.CO2AvoidedKg != 0 {
		t.Fatalf("confidence=%v co2=%v", row.Confidence, row.CO2AvoidedKg)
	}
}

func TestRunRowDecodeRoundTrip(t *testing.T) {
	r := sampleReport(t)
	row, err := newRunRow(r)
	if err != nil {
		t.Fatal(err)
	}
	back, err := row.decode()
	if err != nil {
		t.Fatal(err)
	}
	if back.ID != r.ID || !back.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("identity lost: %s %v", back.ID, back.CreatedAt)
	}
	if back.Projection.NetProfit != r.Projection.NetProfit || len(back.Projection.Years) != len(r.Projection.Years) {
		t.Fatal("projection lost in round trip")
	}
	if back.Yield.MonthlyKWh[yield.Tir] != r.Yield.MonthlyKWh[yield.Tir] {
		t.Fatal("monthly yield lost in round trip")
	}
	if !back.Cost.Total.Equal(r.Cost.Total) {
		t.Fatalf("cost = %s", back.Cost.Total)
	}
}

func TestRunRowDecodeRejectsTamperedReport(t *testing.T) {
	row, err := newRunRow(sampleReport(t))
	if err != nil {
		t.Fatal(err)
	}
	row.Report = row.Report[:len(row.Report)-1] + " }"
	if _, err := row.decode(); err == nil {
		t.Fatal("expected hash mismatch")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Database != "solar" || cfg.Port != 9000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
