// Package planner generates structured project plans against a fixed
// output schema, failing closed when the model output does not match.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrSchemaViolation means the model output did not parse into the
// declared plan schema. The caller decides whether to retry; the
// generator never retries on its own.
var ErrSchemaViolation = errors.New("plan output violates schema")

// Completer produces a JSON-mode completion.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// ProjectInputs carries the stored project attributes the plan is
// grounded on. Members is a pre-formatted roster line per member.
type ProjectInputs struct {
	ProjectName string
	Domain      string
	Description string
	MemberCount int
	Members     []string
	TechStack   []string
}

const planSystemPrompt = `You are a pragmatic senior engineering program manager.
Given a project's attributes and team roster, produce a concrete, actionable project plan.
Ground every recommendation in the provided attributes; do not invent team members or technologies.`

// Generator turns project inputs into a validated ProjectPlan.
type Generator struct {
	completer Completer
	validate  *validator.Validate
}

func NewGenerator(completer Completer) *Generator {
	return &Generator{
		completer: completer,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Generate requests a plan from the model and parses it strictly. Any
// parse or validation mismatch returns ErrSchemaViolation wrapping the
// underlying cause; such failures are never retried here.
func (g *Generator) Generate(ctx context.Context, in ProjectInputs) (*ProjectPlan, error) {
	out, err := g.completer.CompleteJSON(ctx, planSystemPrompt, buildPlanPrompt(in))
	if err != nil {
		return nil, err
	}

	plan, err := parsePlan(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	if err := g.validate.Struct(plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	return plan, nil
}

// parsePlan decodes exactly one JSON object with no unknown fields and
// no trailing content.
func parsePlan(out string) (*ProjectPlan, error) {
	dec := json.NewDecoder(strings.NewReader(out))
	dec.DisallowUnknownFields()

	var plan ProjectPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing content after plan object")
	}
	return &plan, nil
}

func buildPlanPrompt(in ProjectInputs) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", in.ProjectName)
	fmt.Fprintf(&b, "Domain: %s\n", in.Domain)
	if in.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", in.Description)
	}
	fmt.Fprintf(&b, "Team size: %d\n", in.MemberCount)
	if len(in.Members) > 0 {
		b.WriteString("Team members:\n")
		for _, m := range in.Members {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	if len(in.TechStack) > 0 {
		fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(in.TechStack, ", "))
	}

	b.WriteString("\n")
	b.WriteString(schemaInstructions)
	return b.String()
}
