// Package preview walks a workflow tree locally, evaluating conditionals
// against a sample request environment. It powers a dry-run of an endpoint's
// logic without deploying: integrations and codeblocks are recorded but not
// executed.
package preview

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/mujhtech/b0-console/pkg/models"
)

// Result is the trace of one dry-run.
type Result struct {
	// Path lists visited steps in order, as "type:name" labels.
	Path []string
	// Skipped lists steps that cannot run locally (integrations, codeblocks).
	Skipped []string
	// Response is the first response step reached, if any.
	Response *models.WorkflowStep
	// Vars is the final variable environment.
	Vars map[string]any
}

// Run evaluates the step sequence against env. The env maps names visible
// to conditions and variable values, e.g. "body", "params", "headers".
func Run(steps []models.WorkflowStep, env map[string]any) (*Result, error) {
	result := &Result{Vars: make(map[string]any, len(env))}

	for k, v := range env {
		result.Vars[k] = v
	}

	if err := walk(steps, result); err != nil {
		return nil, err
	}

	return result, nil
}

func walk(steps []models.WorkflowStep, result *Result) error {
	for _, step := range steps {
		if result.Response != nil {
			return nil
		}

		label := string(step.Type)
		if step.Name != "" {
			label += ":" + step.Name
		}

		switch step.Type {
		case models.StepTypeRequest:
			// The implicit entry point carries no logic.
		case models.StepTypeVariable:
			result.Path = append(result.Path, label)
			result.Vars[step.Name] = evaluate(step.Value, result.Vars)
		case models.StepTypeIf:
			result.Path = append(result.Path, label)

			matched, err := evaluateCondition(step.Condition, result.Vars)
			if err != nil {
				return fmt.Errorf("if %q: %w", step.Condition, err)
			}

			branch := step.Else
			if matched {
				branch = step.Then
			}

			if err := walk(branch, result); err != nil {
				return err
			}
		case models.StepTypeSwitch:
			result.Path = append(result.Path, label)

			selector := fmt.Sprintf("%v", evaluate(step.Value, result.Vars))

			for _, c := range step.Cases {
				if c.Value != selector {
					continue
				}

				if err := walk(c.Body, result); err != nil {
					return err
				}

				break
			}
		case models.StepTypeResponse:
			result.Path = append(result.Path, label)

			response := step.Clone()
			result.Response = &response

			return nil
		default:
			// Codeblocks and third-party connectors need the platform.
			result.Path = append(result.Path, label)
			result.Skipped = append(result.Skipped, label)
		}
	}

	return nil
}

// evaluateCondition compiles the condition as a boolean expression over the
// current environment. An empty condition is false, matching a bare if that
// was never configured.
func evaluateCondition(condition string, env map[string]any) (bool, error) {
	if condition == "" {
		return false, nil
	}

	program, err := expr.Compile(condition, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	matched, ok := out.(bool)

	return ok && matched, nil
}

// evaluate treats string values as expressions when they compile, literals
// otherwise. Non-string values pass through unchanged.
func evaluate(value any, env map[string]any) any {
	code, ok := value.(string)
	if !ok {
		return value
	}

	program, err := expr.Compile(code, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return code
	}

	out, err := expr.Run(program, env)
	if err != nil || out == nil {
		return code
	}

	return out
}
