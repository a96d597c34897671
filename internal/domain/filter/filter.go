// Package filter compiles CEL expressions used to narrow list output,
// e.g. `record.status == "Active" && record.rating < 3`.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// maxExpressionLength bounds filter expressions; anything longer is
// operator error, not a real filter.
const maxExpressionLength = 1024

// maxNestingDepth is the maximum allowed parenthesis/bracket nesting depth.
const maxNestingDepth = 50

// maxCostBudget is the CEL runtime cost limit per record evaluation.
const maxCostBudget = 100_000

// Filter is a compiled row predicate evaluated once per record.
type Filter struct {
	prg cel.Program
}

// Compile parses and type-checks a filter expression. The expression sees a
// single variable `record`, a map of the record's JSON fields.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, errors.New("filter expression is empty")
	}
	if len(expression) > maxExpressionLength {
		return nil, fmt.Errorf("filter expression too long: %d characters (max %d)", len(expression), maxExpressionLength)
	}
	if err := validateNesting(expression); err != nil {
		return nil, err
	}

	env, err := cel.NewEnv(
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must evaluate to a boolean, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	return &Filter{prg: prg}, nil
}

// Match evaluates the filter against one record. The record is flattened to
// its JSON field names, so expressions use the same names the API returns.
func (f *Filter) Match(record any) (bool, error) {
	fields, err := toMap(record)
	if err != nil {
		return false, err
	}

	out, _, err := f.prg.Eval(map[string]any{"record": fields})
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned non-boolean %T", out.Value())
	}
	return b, nil
}

// Apply returns the subset of items matching the filter.
func Apply[T any](f *Filter, items []T) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		ok, err := f.Match(it)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func toMap(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record for filtering: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record for filtering: %w", err)
	}
	return fields, nil
}

// validateNesting checks that the expression does not exceed the maximum
// allowed nesting depth for parentheses, brackets, and braces.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}
