package analysis

import (
	"fmt"
	"strings"
)

// Prompt builders for the three analysis stages. Each is a deterministic
// function of the concept and the prior-stage records; the prompted formats
// pair with the parsers in this package.

// ExperiencePrompt builds the prompt for the experience-design stage.
func ExperiencePrompt(c Concept) string {
	return fmt.Sprintf(`Product: %s

Create concise user journey for MVP in format:
Step 1 → Step 2 → Step 3

Focus on core user value and essential screens only.`, c.Text)
}

// FeasibilityPrompt builds the prompt for the technical-feasibility stage.
// The journey from the prior stage is folded into the context.
func FeasibilityPrompt(c Concept, exp ExperienceRecord) string {
	journey := strings.Join(exp.Journey.Items, " → ")
	if journey == "" {
		journey = exp.Narrative.Value
	}
	return fmt.Sprintf(`Product: %s
Journey: %s

Provide assessment in format:
Tech Stack: [frontend/backend/database]
Feasibility Score: [1-10]
MVP Timeline: [weeks]
Main Technical Risk: [brief description]

Keep responses concise and focused.`, c.Text, journey)
}

// PlanningPrompt builds the prompt for the product-planning stage on top of
// the feasibility assessment.
func PlanningPrompt(c Concept, feas FeasibilityRecord) string {
	return fmt.Sprintf(`Product: %s
Tech: %s (feasibility: %d/10)
Timeline: %d weeks

Provide structured output:
MVP Features:
- [essential feature 1]
- [essential feature 2]
- [essential feature 3]

Key Risks:
- [primary risk]
- [secondary risk]

Next Steps:
- [immediate action]
- [week 1 milestone]
- [validation approach]

Keep each item brief and actionable.`,
		c.Text, strings.Join(feas.TechStack.Items, "/"), feas.Score.Value, feas.TimelineWeeks.Value)
}
