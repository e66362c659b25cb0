package analysis

import (
	"strings"
	"testing"
	"time"
)

func succeededBundle(text string) *Bundle {
	b := &Bundle{
		ID:      RunID("run-" + text),
		Concept: Concept{Text: text},
	}
	b.Experience = ExperienceRecord{
		Journey:   ListField{Items: []string{"Open", "Act", "Done"}},
		Narrative: TextField{Value: "Open → Act → Done"},
	}
	b.Feasibility = FeasibilityRecord{
		Score:         IntField{Value: 8},
		TechStack:     ListField{Items: []string{"React", "Go", "Postgres"}},
		TimelineWeeks: IntField{Value: 6},
		MainRisk:      TextField{Value: "scope creep"},
	}
	b.Planning = PlanningRecord{
		MVPFeatures: ListField{Items: []string{"core flow"}},
		Risks:       ListField{Items: []string{"adoption"}},
		NextSteps:   ListField{Items: []string{"mockups"}},
	}
	b.Usage = TokenUsage{Prompt: 100, Completion: 50}
	b.Finalize()
	return b
}

func TestAssembleReportRowPerConcept(t *testing.T) {
	res := BatchResult{
		Bundles: []*Bundle{succeededBundle("a"), succeededBundle("b")},
		Usage:   TokenUsage{Prompt: 200, Completion: 100},
	}
	doc := AssembleReport(res, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	if len(doc.Summary) != 2 || len(doc.Sections) != 2 {
		t.Fatalf("summary=%d sections=%d, want 2 each", len(doc.Summary), len(doc.Sections))
	}
	if doc.Summary[0].Concept != "a" || doc.Summary[1].Concept != "b" {
		t.Errorf("summary order wrong: %+v", doc.Summary)
	}
	if doc.Summary[0].Score != "8/10" {
		t.Errorf("score cell = %q", doc.Summary[0].Score)
	}
	if doc.TotalTokens != 300 {
		t.Errorf("total tokens = %d, want 300", doc.TotalTokens)
	}
}

func TestAssembleReportMarksFallbacks(t *testing.T) {
	b := succeededBundle("degraded")
	b.Feasibility.Score = IntField{Value: DefaultScore, Fallback: true}
	b.Feasibility.TechStack = ListField{Fallback: true}
	b.Finalize()

	doc := AssembleReport(BatchResult{Bundles: []*Bundle{b}}, time.Now())

	if !strings.Contains(doc.Summary[0].Score, FallbackMarker) {
		t.Errorf("fallback score must carry the marker, got %q", doc.Summary[0].Score)
	}
	if !strings.Contains(doc.Summary[0].TechStack, FallbackMarker) {
		t.Errorf("fallback stack must carry the marker, got %q", doc.Summary[0].TechStack)
	}
	// extracted fields stay unmarked
	if strings.Contains(doc.Summary[0].Timeline, FallbackMarker) {
		t.Errorf("extracted timeline must not carry the marker, got %q", doc.Summary[0].Timeline)
	}
}

func TestFinalizeStatusDerivation(t *testing.T) {
	allFallback := func() *Bundle {
		b := &Bundle{}
		b.Experience, _ = ParseExperience("")
		b.Feasibility, _ = ParseFeasibility("")
		b.Planning, _ = ParsePlanning("")
		return b
	}

	b := succeededBundle("ok")
	if b.Status != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", b.Status)
	}

	b = succeededBundle("partial")
	b.Feasibility, _ = ParseFeasibility("")
	b.Finalize()
	if b.Status != StatusPartiallyFailed {
		t.Errorf("status = %s, want partially_failed", b.Status)
	}

	b = allFallback()
	b.Finalize()
	if b.Status != StatusFailed {
		t.Errorf("status = %s, want failed", b.Status)
	}
}

func TestTokenUsageAdd(t *testing.T) {
	var u TokenUsage
	u.Add(TokenUsage{Prompt: 10, Completion: 5})
	u.Add(TokenUsage{Prompt: 7, Completion: 3})
	if u.Prompt != 17 || u.Completion != 8 || u.Total() != 25 {
		t.Errorf("usage = %+v", u)
	}
}
