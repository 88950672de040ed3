package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func healthyFacts() Facts {
	return Facts{
		InitialCost:           173_400_000,
		TotalIncome:           2_000_000_000,
		NetProfit:             1_826_600_000,
		PaybackReached:        true,
		PaybackYears:          4.2,
		PaybackWithinContract: true,
		ContractYears:         20,
		HorizonYears:          20,
		CapacityKW:            4.64,
		PanelCount:            8,
		YieldSource:           "PVGIS",
		SolarRank:             1,
	}
}

func TestEvaluatePassesHealthyEstimate(t *testing.T) {
	res, err := NewEngine().Evaluate(context.Background(), healthyFacts())
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision != DecisionPass || len(res.Warnings) != 0 || len(res.Violations) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.PoliciesRan != len(DefaultPolicies()) {
		t.Fatalf("policies ran = %d", res.PoliciesRan)
	}
}

func TestEvaluateWarnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Facts)
		policyID string
	}{
		{"late payback", func(f *Facts) { f.PaybackYears = 25; f.PaybackWithinContract = false }, "payback-within-contract"},
		{"undersized", func(f *Facts) { f.InverterUndersized = true }, "inverter-undersized"},
		{"degenerate", func(f *Facts) { f.Degenerate = true; f.DegenerateYear = 11 }, "degenerate-projection"},
		{"fallback", func(f *Facts) { f.YieldFallback = true; f.YieldSource = "local-approximation" }, "yield-fallback"},
		{"gold wins", func(f *Facts) { f.SolarRank = 2; f.BestAlternative = "Gold" }, "benchmark-outperforms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthyFacts()
			tt.mutate(&f)
			res, err := NewEngine().Evaluate(context.Background(), f)
			if err != nil {
				t.Fatal(err)
			}
			if res.Decision != DecisionWarn || len(res.Warnings) != 1 || res.Warnings[0].PolicyID != tt.policyID {
				t.Fatalf("unexpected result: %+v", res)
			}
		})
	}
}

func TestEvaluateDeniesLoss(t *testing.T) {
	f := healthyFacts()
	f.NetProfit = -5
	f.PaybackReached = false
	res, err := NewEngine().Evaluate(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision != DecisionDeny || len(res.Violations) != 1 || res.Violations[0].PolicyID != "min-net-profit" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected the payback warning too: %+v", res.Warnings)
	}
}

func TestSetThreshold(t *testing.T) {
	e := NewEngine()
	if !e.SetThreshold("payback-within-contract", 3) {
		t.Fatal("policy not found")
	}
	if e.SetThreshold("missing", 1) {
		t.Fatal("unknown id should not match")
	}
	res, _ := e.Evaluate(context.Background(), healthyFacts())
	if res.Decision != DecisionWarn || !strings.Contains(res.Warnings[0].Message, "exceeds 3 years") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRegoPolicies(t *testing.T) {
	dir := t.TempDir()
	policy := `package solar

deny[msg] {
	input.capacity_kw < 5
	msg := sprintf("system of %v kW is too small for a grid contract", [input.capacity_kw])
}

warn[msg] {
	input.payback_years > 4
	msg := "payback longer than four years"
}
`
	if err := os.WriteFile(filepath.Join(dir, "size.rego"), []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine().WithRegoDir(dir)
	res, err := e.Evaluate(context.Background(), healthyFacts())
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision != DecisionDeny {
		t.Fatalf("decision = %s", res.Decision)
	}
	if len(res.Violations) != 1 || !strings.Contains(res.Violations[0].Message, "too small") {
		t.Fatalf("violations = %+v", res.Violations)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].PolicyID != "rego" {
		t.Fatalf("warnings = %+v", res.Warnings)
	}

	if err := NewRegoEvaluator(dir).ValidatePolicies(context.Background()); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
}

func TestRegoInvalidPolicyIsReported(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("package solar\n\ndeny[msg] {\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := NewEngine().WithRegoDir(dir).Evaluate(context.Background(), healthyFacts())
	if err == nil {
		t.Fatal("expected an error for a broken policy")
	}
	if res == nil || res.Decision != DecisionPass {
		t.Fatalf("built-in outcome should survive: %+v", res)
	}
	if NewRegoEvaluator(dir).ValidatePolicies(context.Background()) == nil {
		t.Fatal("expected validation error")
	}
}
