package analysis

import (
	"fmt"
	"strings"
	"time"
)

// FallbackMarker is appended to every rendered value whose field the parser
// substituted. Downstream consumers decide from this document, so degraded
// values must never read as genuine analysis.
const FallbackMarker = "[fallback]"

// SummaryRow is one line of the executive summary table.
type SummaryRow struct {
	Concept   string `json:"concept"`
	Score     string `json:"score"`
	Timeline  string `json:"timeline"`
	TechStack string `json:"tech_stack"`
	Status    Status `json:"status"`
}

// DetailRow is one field/value pair of a per-concept detail section.
type DetailRow struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DetailSection holds the full record contents for one concept.
type DetailSection struct {
	Title  string      `json:"title"`
	Status Status      `json:"status"`
	Rows   []DetailRow `json:"rows"`
}

// DocumentPayload is the structured document handed to the rendering
// collaborator: plain data, no formatting logic.
type DocumentPayload struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     []SummaryRow    `json:"summary"`
	Sections    []DetailSection `json:"sections"`
	TotalTokens int             `json:"total_tokens"`
	FailedCount int             `json:"failed_count"`
}

// AssembleReport converts a batch result into the document payload. Pure
// structural transform: no service calls, no retries.
func AssembleReport(res BatchResult, now time.Time) DocumentPayload {
	doc := DocumentPayload{
		Title:       "PoC Analysis Results",
		GeneratedAt: now,
		TotalTokens: res.Usage.Total(),
		FailedCount: res.Failed,
	}

	for i, b := range res.Bundles {
		doc.Summary = append(doc.Summary, SummaryRow{
			Concept:   b.Concept.Label(),
			Score:     markText(fmt.Sprintf("%d/10", b.Feasibility.Score.Value), b.Feasibility.Score.Fallback),
			Timeline:  markText(fmt.Sprintf("%d weeks", b.Feasibility.TimelineWeeks.Value), b.Feasibility.TimelineWeeks.Fallback),
			TechStack: markList(b.Feasibility.TechStack, " / "),
			Status:    b.Status,
		})

		doc.Sections = append(doc.Sections, DetailSection{
			Title:  fmt.Sprintf("Concept %d: %s", i+1, b.Concept.Label()),
			Status: b.Status,
			Rows: []DetailRow{
				{Field: "Concept", Value: b.Concept.Text},
				{Field: "Variant", Value: orDash(b.Concept.Variant)},
				{Field: "User Journey", Value: markList(b.Experience.Journey, " → ")},
				{Field: "Experience Notes", Value: markText(b.Experience.Narrative.Value, b.Experience.Narrative.Fallback)},
				{Field: "Tech Stack", Value: markList(b.Feasibility.TechStack, " / ")},
				{Field: "Feasibility", Value: markText(fmt.Sprintf("%d/10", b.Feasibility.Score.Value), b.Feasibility.Score.Fallback)},
				{Field: "Timeline", Value: markText(fmt.Sprintf("%d weeks", b.Feasibility.TimelineWeeks.Value), b.Feasibility.TimelineWeeks.Fallback)},
				{Field: "Main Technical Risk", Value: markText(b.Feasibility.MainRisk.Value, b.Feasibility.MainRisk.Fallback)},
				{Field: "MVP Features", Value: markList(b.Planning.MVPFeatures, "; ")},
				{Field: "Key Risks", Value: markList(b.Planning.Risks, "; ")},
				{Field: "Next Steps", Value: markList(b.Planning.NextSteps, "; ")},
				{Field: "Tokens Used", Value: fmt.Sprintf("%d", b.Usage.Total())},
				{Field: "Status", Value: string(b.Status)},
			},
		})
	}

	return doc
}

func markText(v string, fallback bool) string {
	if fallback {
		return v + " " + FallbackMarker
	}
	return v
}

func markList(f ListField, sep string) string {
	if f.Fallback {
		if len(f.Items) == 0 {
			return FallbackText + " " + FallbackMarker
		}
		return strings.Join(f.Items, sep) + " " + FallbackMarker
	}
	return strings.Join(f.Items, sep)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
