// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Variable is the name records are bound to inside expressions.
const Variable = "item"

// CELEvaluator handles evaluation of CEL expressions over a single record
type CELEvaluator struct {
	env *cel.Env
}

// NewCELEvaluator creates a new CEL evaluator
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(Variable, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	return &CELEvaluator{env: env}, nil
}

// Condition is a compiled expression.
type Condition struct {
	expression string
	program    cel.Program
}

// Compile parses and type-checks an expression once so it can be matched against many records.
func (e *CELEvaluator) Compile(expression string) (*Condition, error) {
	ast, issues := e.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error parsing expression: %w", issues.Err())
	}

	checked, issues := e.env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error type-checking expression: %w", issues.Err())
	}

	program, err := e.env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("error compiling expression: %w", err)
	}

	return &Condition{expression: expression, program: program}, nil
}

// Match evaluates the condition against one record
func (c *Condition) Match(item map[string]interface{}) (bool, error) {
	if item == nil {
		return false, fmt.Errorf("no record to evaluate")
	}

	result, _, err := c.program.Eval(map[string]interface{}{Variable: item})
	if err != nil {
		return false, fmt.Errorf("error evaluating expression: %w", err)
	}

	if result.Type() != types.BoolType {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean", c.expression)
	}

	return result.Value().(bool), nil
}

// Filter keeps the items whose fields satisfy expression. A blank expression keeps
// everything. Items the expression cannot be evaluated against, for example
// because a referenced field is absent, are dropped; only a malformed expression
// is an error.
func Filter[T any](expression string, items []T, fields func(T) map[string]interface{}) ([]T, error) {
	if strings.TrimSpace(expression) == "" {
		return items, nil
	}

	evaluator, err := NewCELEvaluator()
	if err != nil {
		return nil, err
	}
	cond, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := cond.Match(fields(item))
		if err == nil && ok {
			out = append(out, item)
		}
	}
	return out, nil
}
