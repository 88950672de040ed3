package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/rego"
)

// Queries evaluated in every operator policy file.
const (
	RegoDenyQuery = "data.solar.deny"
	RegoWarnQuery = "data.solar.warn"
)

// RegoEvaluator runs operator-supplied Rego policies from a directory.
type RegoEvaluator struct {
	policiesDir string
}

func NewRegoEvaluator(policiesDir string) *RegoEvaluator {
	return &RegoEvaluator{policiesDir: policiesDir}
}

// Evaluate runs every *.rego file in the directory against input. Files that
// fail are skipped and reported in the returned error.
func (e *RegoEvaluator) Evaluate(ctx context.Context, input map[string]any) (denials, warnings []string, err error) {
	files, err := filepath.Glob(filepath.Join(e.policiesDir, "*.rego"))
	if err != nil {
		return nil, nil, fmt.Errorf("list policies: %w", err)
	}

	var errs []error
	for _, file := range files {
		policy, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		d, err := e.evalQuery(ctx, file, string(policy), RegoDenyQuery, input)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		denials = append(denials, d...)

		w, err := e.evalQuery(ctx, file, string(policy), RegoWarnQuery, input)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		warnings = append(warnings, w...)
	}
	return denials, warnings, errors.Join(errs...)
}

func (e *RegoEvaluator) evalQuery(ctx context.Context, name, policy, query string, input map[string]any) ([]string, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module(name, policy),
		rego.Input(input),
	)

	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			if set, ok := expr.Value.([]interface{}); ok {
				for _, v := range set {
					if msg, ok := v.(string); ok {
						messages = append(messages, msg)
					}
				}
			}
		}
	}
	return messages, nil
}

// ValidatePolicies compiles every policy file without evaluating it.
func (e *RegoEvaluator) ValidatePolicies(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(e.policiesDir, "*.rego"))
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		_, err = rego.New(rego.Query(RegoDenyQuery), rego.Module(file, string(content))).PrepareForEval(ctx)
		if err != nil {
			return fmt.Errorf("invalid policy %s: %w", file, err)
		}
	}
	return nil
}
