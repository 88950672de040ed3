// Package policy provides advisory rules over a finished estimation.
// Rules annotate a report with warnings or a deny decision; they never stop it
// from being produced.
package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PolicyType defines the type of policy
type PolicyType string

const (
	PolicyTypePaybackWithinContract PolicyType = "payback_within_contract"
	PolicyTypeMinNetProfit          PolicyType = "min_net_profit"
	PolicyTypeInverterUndersized    PolicyType = "inverter_undersized"
	PolicyTypeDegenerateProjection  PolicyType = "degenerate_projection"
	PolicyTypeYieldFallback         PolicyType = "yield_fallback"
	PolicyTypeBenchmarkOutperforms  PolicyType = "benchmark_outperforms"
)

// Severity defines policy violation severity
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Decision is the policy evaluation outcome
type Decision string

const (
	DecisionPass Decision = "pass"
	DecisionWarn Decision = "warn"
	DecisionDeny Decision = "deny"
)

// Policy defines an advisory rule
type Policy struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Type        PolicyType `json:"type" yaml:"type"`
	Severity    Severity   `json:"severity" yaml:"severity"`
	Threshold   float64    `json:"threshold" yaml:"threshold"`
	Enabled     bool       `json:"enabled" yaml:"enabled"`
}

// Violation represents a policy violation
type Violation struct {
	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
}

// Warning represents a policy warning
type Warning struct {
	PolicyID string `json:"policy_id"`
	Message  string `json:"message"`
}

// Facts is the summary of an estimation that rules look at.
type Facts struct {
	InitialCost           float64 `json:"initial_cost"`
	TotalIncome           float64 `json:"total_income"`
	NetProfit             float64 `json:"net_profit"`
	FirstYearIncome       float64 `json:"first_year_income"`
	PaybackReached        bool    `json:"payback_reached"`
	PaybackYears          float64 `json:"payback_years"`
	PaybackWithinContract bool    `json:"payback_within_contract"`
	ContractYears         int     `json:"contract_years"`
	HorizonYears          int     `json:"horizon_years"`
	CapacityKW            float64 `json:"capacity_kw"`
	PanelCount            int     `json:"panel_count"`
	InverterUndersized    bool    `json:"inverter_undersized"`
	Degenerate            bool    `json:"degenerate"`
	DegenerateYear        int     `json:"degenerate_year"`
	YieldSource           string  `json:"yield_source"`
	YieldFallback         bool    `json:"yield_fallback"`
	SolarRank             int     `json:"solar_rank"`
	BestAlternative       string  `json:"best_alternative"`
	BestAlternativeProfit float64 `json:"best_alternative_profit"`
	Confidence            float64 `json:"confidence"`
	CO2AvoidedKg          float64 `json:"co2_avoided_kg"`
}

func (f Facts) input() map[string]any {
	return map[string]any{
		"initial_cost":            f.InitialCost,
		"total_income":            f.TotalIncome,
		"net_profit":              f.NetProfit,
		"first_year_income":       f.FirstYearIncome,
		"payback_reached":         f.PaybackReached,
		"payback_years":           f.PaybackYears,
		"payback_within_contract": f.PaybackWithinContract,
		"contract_years":          f.ContractYears,
		"horizon_years":           f.HorizonYears,
		"capacity_kw":             f.CapacityKW,
		"panel_count":             f.PanelCount,
		"inverter_undersized":     f.InverterUndersized,
		"degenerate":              f.Degenerate,
		"degenerate_year":         f.DegenerateYear,
		"yield_source":            f.YieldSource,
		"yield_fallback":          f.YieldFallback,
		"solar_rank":              f.SolarRank,
		"best_alternative":        f.BestAlternative,
		"best_alternative_profit": f.BestAlternativeProfit,
		"confidence":              f.Confidence,
		"co2_avoided_kg":          f.CO2AvoidedKg,
	}
}

// EvaluationResult contains the policy evaluation outcome
type EvaluationResult struct {
	Decision    Decision    `json:"decision"`
	Violations  []Violation `json:"violations"`
	Warnings    []Warning   `json:"warnings"`
	PoliciesRan int         `json:"policies_ran"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
}

// Engine evaluates policies against estimation facts
type Engine struct {
	policies []Policy
	rego     *RegoEvaluator
	logger   zerolog.Logger
}

// NewEngine creates an engine with the default policies
func NewEngine() *Engine {
	return &Engine{
		policies: DefaultPolicies(),
		logger:   zerolog.Nop(),
	}
}

// WithRegoDir adds operator policies from *.rego files in dir
func (e *Engine) WithRegoDir(dir string) *Engine {
	if dir != "" {
		e.rego = NewRegoEvaluator(dir)
	}
	return e
}

// WithLogger sets the logger
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.logger = l
	return e
}

// AddPolicy adds a custom policy
func (e *Engine) AddPolicy(p Policy) {
	e.policies = append(e.policies, p)
}

// SetThreshold changes the threshold of the policy with the given ID.
func (e *Engine) SetThreshold(id string, threshold float64) bool {
	for i := range e.policies {
		if e.policies[i].ID == id {
			e.policies[i].Threshold = threshold
			return true
		}
	}
	return false
}

// Policies returns a copy of the configured policies
func (e *Engine) Policies() []Policy {
	out := make([]Policy, len(e.policies))
	copy(out, e.policies)
	return out
}

// Evaluate runs all policies against the facts. Rego failures are returned
// together with the built-in outcome.
func (e *Engine) Evaluate(ctx context.Context, facts Facts) (*EvaluationResult, error) {
	result := &EvaluationResult{
		Decision:    DecisionPass,
		Violations:  make([]Violation, 0),
		Warnings:    make([]Warning, 0),
		EvaluatedAt: time.Now(),
	}

	for _, policy := range e.policies {
		if !policy.Enabled {
			continue
		}

		result.PoliciesRan++
		violation, warning := e.evaluatePolicy(policy, facts)

		if violation != nil {
			result.Violations = append(result.Violations, *violation)
			result.Decision = DecisionDeny
		}

		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
			if result.Decision == DecisionPass {
				result.Decision = DecisionWarn
			}
		}
	}

	if e.rego == nil {
		return result, nil
	}

	denials, warnings, err := e.rego.Evaluate(ctx, facts.input())
	for _, msg := range denials {
		result.Violations = append(result.Violations, Violation{
			PolicyID:   "rego",
			PolicyName: "Operator policy",
			Message:    msg,
			Severity:   string(SeverityError),
		})
		result.Decision = DecisionDeny
	}
	for _, msg := range warnings {
		result.Warnings = append(result.Warnings, Warning{PolicyID: "rego", Message: msg})
		if result.Decision == DecisionPass {
			result.Decision = DecisionWarn
		}
	}
	if err != nil {
		e.logger.Error().Err(err).Msg("operator policy evaluation failed")
		return result, err
	}
	return result, nil
}

func (e *Engine) evaluatePolicy(p Policy, f Facts) (*Violation, *Warning) {
	var msg string

	switch p.Type {
	case PolicyTypePaybackWithinContract:
		limit := float64(f.ContractYears)
		if p.Threshold > 0 {
			limit = p.Threshold
		}
		switch {
		case !f.PaybackReached:
			msg = fmt.Sprintf("Investment is not recovered within the %d-year horizon", f.HorizonYears)
		case f.PaybackYears > limit:
			msg = fmt.Sprintf("Payback (%.1f years) exceeds %.0f years", f.PaybackYears, limit)
		}

	case PolicyTypeMinNetProfit:
		if f.NetProfit < p.Threshold {
			msg = fmt.Sprintf("Net profit (%.0f) is below the minimum (%.0f)", f.NetProfit, p.Threshold)
		}

	case PolicyTypeInverterUndersized:
		if f.InverterUndersized {
			msg = fmt.Sprintf("Array capacity %.2f kW exceeds the largest inverter of the selected brand", f.CapacityKW)
		}

	case PolicyTypeDegenerateProjection:
		if f.Degenerate {
			msg = fmt.Sprintf("Production reaches zero in year %d", f.DegenerateYear)
		}

	case PolicyTypeYieldFallback:
		if f.YieldFallback {
			msg = fmt.Sprintf("Production is estimated by %s; satellite data was unavailable", f.YieldSource)
		}

	case PolicyTypeBenchmarkOutperforms:
		if f.SolarRank > 1 {
			msg = fmt.Sprintf("%s returns more than solar (net %.0f vs %.0f)", f.BestAlternative, f.BestAlternativeProfit, f.NetProfit)
		}
	}

	if msg == "" {
		return nil, nil
	}
	if p.Severity == SeverityError {
		return &Violation{
			PolicyID:   p.ID,
			PolicyName: p.Name,
			Message:    msg,
			Severity:   string(p.Severity),
		}, nil
	}
	return nil, &Warning{PolicyID: p.ID, Message: msg}
}

// DefaultPolicies returns the built-in rules.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			ID:          "payback-within-contract",
			Name:        "Payback Within Contract",
			Description: "Warn when the investment is not recovered before the purchase contract ends",
			Type:        PolicyTypePaybackWithinContract,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "min-net-profit",
			Name:        "Minimum Net Profit",
			Description: "Deny when net profit over the horizon is below the threshold",
			Type:        PolicyTypeMinNetProfit,
			Severity:    SeverityError,
			Threshold:   0,
			Enabled:     true,
		},
		{
			ID:          "inverter-undersized",
			Name:        "Inverter Undersized",
			Description: "Warn when no inverter size of the brand covers the array",
			Type:        PolicyTypeInverterUndersized,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "degenerate-projection",
			Name:        "Degenerate Projection",
			Description: "Warn when degradation drives production to zero inside the horizon",
			Type:        PolicyTypeDegenerateProjection,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "yield-fallback",
			Name:        "Approximate Yield",
			Description: "Note when the local approximation replaced satellite data",
			Type:        PolicyTypeYieldFallback,
			Severity:    SeverityInfo,
			Enabled:     true,
		},
		{
			ID:          "benchmark-outperforms",
			Name:        "Alternative Outperforms",
			Description: "Warn when a fixed-rate alternative beats solar over the horizon",
			Type:        PolicyTypeBenchmarkOutperforms,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
	}
}
