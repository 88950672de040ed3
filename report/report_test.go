package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sadeghmontazeri/solar/decision/catalog"
	"github.com/sadeghmontazeri/solar/decision/estimation"
	"github.com/sadeghmontazeri/solar/decision/policy"
	"github.com/sadeghmontazeri/solar/decision/projection"
	"github.com/sadeghmontazeri/solar/decision/yield"
)

func sampleReport(t *testing.T) *estimation.Report {
	t.Helper()
	down := yield.ProviderFunc(func(context.Context, yield.Request) (yield.Estimate, error) {
		return yield.Estimate{}, errors.New("connection refused")
	})
	resolver := yield.NewResolver(down, yield.NewLocalEstimator(), zerolog.Nop())
	e, err := estimation.NewEngine(catalog.Default(), estimation.DefaultSettings(), resolver)
	if err != nil {
		t.Fatal(err)
	}
	e.WithPolicy(policy.NewEngine())
	r, err := e.Estimate(context.Background(), estimation.Request{})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTable(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	if err := Table(&buf, r, Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"SOLAR RETURN ESTIMATE", "171 million toman", "Growatt", "local-approximation", "INVESTMENT COMPARISON", "Gold"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n║  "); got < 20 {
		t.Errorf("expected yearly rows, got %d box rows", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	if err := JSON(&buf, r); err != nil {
		t.Fatal(err)
	}
	var back estimation.Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != r.ID || len(back.Projection.Years) != len(r.Projection.Years) {
		t.Fatalf("decoded report differs: id=%s years=%d", back.ID, len(back.Projection.Years))
	}
	if back.Yield.MonthlyKWh[yield.Tir] != r.Yield.MonthlyKWh[yield.Tir] {
		t.Fatal("monthly production lost in JSON")
	}
}

func TestMarkdownSections(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	if err := Markdown(&buf, r, Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"## ☀️ Solar Return Estimate", "| Farvardin |", "| Esfand |", "### 📈 Yearly Projection", "**Solar**", "satellite data unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestHTMLRendersTables(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	if err := HTML(&buf, r, Options{PersianDigits: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.Contains(out, `dir="rtl"`) {
		t.Fatalf("missing document wrapper: %.80s", out)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<h2>") {
		t.Fatal("markdown tables were not rendered")
	}
	if !strings.Contains(out, "۱۷۱ million") {
		t.Fatal("expected Persian digits in money values")
	}
}

func TestPaybackText(t *testing.T) {
	o := Options{}
	if got := o.payback(projection.Payback{Reached: true, WholeYears: 3, Months: 4}, 20); got != "3 years 4 months" {
		t.Fatalf("got %q", got)
	}
	if got := o.payback(projection.Payback{}, 20); got != "> 20 years" {
		t.Fatalf("got %q", got)
	}
	if got := (Options{PersianDigits: true}).payback(projection.Payback{}, 8); got != "> ۸ years" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Jinko Solar (Tiger Pro, Eagle)", 10); got != "Jinko S..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("Huawei", 10); got != "Huawei" {
		t.Fatalf("got %q", got)
	}
}
