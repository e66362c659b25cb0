package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

func samplePayload() domain.DocumentPayload {
	return domain.DocumentPayload{
		Title:       "PoC Analysis Results",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Summary: []domain.SummaryRow{
			{Concept: "water tracker", Score: "8/10", Timeline: "6 weeks", TechStack: "React Native/Go", Status: "succeeded"},
		},
		Sections: []domain.DetailSection{
			{
				Title: "water tracker",
				Rows: []domain.DetailRow{
					{Field: "User Journey", Value: "Open app → Log intake"},
					{Field: "Main Risk", Value: "(not extracted) [fallback]"},
				},
			},
		},
		FailedCount: 0,
		TotalTokens: 300,
	}
}

func TestRenderLayout(t *testing.T) {
	out := Render(samplePayload())

	for _, want := range []string{
		"# PoC Analysis Results",
		"Generated: 2025-06-01 12:00:00",
		"## Executive Summary",
		"| Concept | Feasibility | Timeline | Tech Stack | Status |",
		"| water tracker | 8/10 | 6 weeks | React Native/Go | succeeded |",
		"## water tracker",
		"| User Journey | Open app → Log intake |",
		"Concepts analyzed: 1",
		"Total tokens used: 300",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderKeepsFallbackMarkerVisible(t *testing.T) {
	out := Render(samplePayload())
	if !strings.Contains(out, "(not extracted) [fallback]") {
		t.Errorf("fallback marker must survive rendering")
	}
}

func TestCellEscapesTableBreakers(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a|b", "a\\|b"},
		{"line1\nline2", "line1 line2"},
		{"", "-"},
		{"  ", "-"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := cell(c.in); got != c.want {
			t.Errorf("cell(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := NewMarkdown().WriteFile(samplePayload(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "# PoC Analysis Results") {
		t.Errorf("file does not start with the title")
	}
}
