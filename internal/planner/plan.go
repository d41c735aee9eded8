package planner

// ProjectPlan is the statically declared output schema for plan
// generation. Every field is required; the strict parser fails closed
// rather than returning a partially populated plan.
type ProjectPlan struct {
	ProjectOverview   string            `json:"project_overview" validate:"required"`
	TeamStructure     map[string]string `json:"team_structure" validate:"required,min=1"`
	Roadmap           []string          `json:"roadmap" validate:"required,min=1,dive,required"`
	ToolsAndPractices []string          `json:"tools_and_practices" validate:"required,min=1,dive,required"`
	Risks             []string          `json:"risks" validate:"required,min=1,dive,required"`
	NextSteps         []string          `json:"next_steps" validate:"required,min=1,dive,required"`
	Timeline          map[string]string `json:"timeline" validate:"required,min=1"`
	Sources           []string          `json:"sources" validate:"required,min=1,dive,required"`
}

// schemaInstructions is embedded in the prompt so the model knows the
// exact shape and meaning of each field.
const schemaInstructions = `Return your answer strictly as a JSON object with exactly these fields:
{
  "project_overview":   string                      - summary of the project in simple terms,
  "team_structure":     object of string to string  - roles and responsibilities of each member,
  "roadmap":            array of strings            - step-by-step roadmap for building the project,
  "tools_and_practices": array of strings           - best practices, recommended tools, and workflows,
  "risks":              array of strings            - potential risks and pitfalls to watch for,
  "next_steps":         array of strings            - immediate next steps for the team,
  "timeline":           object of string to string  - timeline by phase with estimated durations,
  "sources":            array of strings            - recommended references and learning material
}
Do not add any other fields. Do not omit any field. Output JSON only.`
