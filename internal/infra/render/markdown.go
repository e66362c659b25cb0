package render

import (
	"fmt"
	"os"
	"strings"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

// Markdown renders a document payload to a markdown file. The payload is
// plain structured data; all formatting decisions live here, the core never
// inspects the output.
type Markdown struct{}

func NewMarkdown() Markdown { return Markdown{} }

func (Markdown) WriteFile(payload domain.DocumentPayload, path string) error {
	return os.WriteFile(path, []byte(Render(payload)), 0o644)
}

// Render produces the full document text.
func Render(p domain.DocumentPayload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", p.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Concept | Feasibility | Timeline | Tech Stack | Status |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range p.Summary {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(row.Concept), cell(row.Score), cell(row.Timeline), cell(row.TechStack), row.Status)
	}
	b.WriteString("\n")

	for _, sec := range p.Sections {
		fmt.Fprintf(&b, "## %s\n\n", sec.Title)
		b.WriteString("| Field | Value |\n")
		b.WriteString("| --- | --- |\n")
		for _, row := range sec.Rows {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(row.Field), cell(row.Value))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nConcepts analyzed: %d  \n", len(p.Summary))
	fmt.Fprintf(&b, "Failed: %d  \n", p.FailedCount)
	fmt.Fprintf(&b, "Total tokens used: %d\n", p.TotalTokens)
	return b.String()
}

// cell escapes pipes and newlines so untrusted generated text cannot break
// the table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

var _ domain.ReportRenderer = Markdown{}
