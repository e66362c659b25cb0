package mysql

import (
	"strings"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// joinLines flattens a list field for a text column
func joinLines(items []string) string {
	return strings.Join(items, "\n")
}

// splitLines is the inverse of joinLines; empty column means empty list
func splitLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// applyFallbackFields rehydrates the per-field fallback flags from the
// comma-separated column written by Save.
func applyFallbackFields(b *domain.Bundle, csv string) {
	for _, name := range strings.Split(csv, ",") {
		switch strings.TrimSpace(name) {
		case "journey":
			b.Experience.Journey.Fallback = true
		case "narrative":
			b.Experience.Narrative.Fallback = true
		case "score":
			b.Feasibility.Score.Fallback = true
		case "tech_stack":
			b.Feasibility.TechStack.Fallback = true
		case "timeline_weeks":
			b.Feasibility.TimelineWeeks.Fallback = true
		case "main_risk":
			b.Feasibility.MainRisk.Fallback = true
		case "mvp_features":
			b.Planning.MVPFeatures.Fallback = true
		case "risks":
			b.Planning.Risks.Fallback = true
		case "next_steps":
			b.Planning.NextSteps.Fallback = true
		}
	}
}
