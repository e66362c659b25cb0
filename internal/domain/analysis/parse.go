package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Tolerant extraction of stage records from free-text model replies. The
// generator is untrusted: any structural mismatch degrades into flagged
// defaults instead of an error, so the pipeline stays total. The bool result
// reports whether every field was extracted.

var (
	rxNumber  = regexp.MustCompile(`\d+`)
	rxStepSep = regexp.MustCompile(`\s*(?:->|→|=>)\s*`)
	rxStepNum = regexp.MustCompile(`(?i)^(?:step\s*)?\d+[.):]\s*`)
)

// ParseExperience extracts an ordered user-journey from a reply like
// "Step 1 → Step 2 → Step 3" or a numbered/bulleted list.
func ParseExperience(raw string) (ExperienceRecord, bool) {
	var rec ExperienceRecord

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		rec.Journey = ListField{Items: nil, Fallback: true}
		rec.Narrative = TextField{Value: FallbackText, Fallback: true}
		return rec, false
	}
	rec.Narrative = TextField{Value: trimmed}

	var steps []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// arrow-chained journey on one line
		if parts := rxStepSep.Split(line, -1); len(parts) >= 2 {
			for _, p := range parts {
				if p = cleanStep(p); p != "" {
					steps = append(steps, p)
				}
			}
			continue
		}
		// numbered or bulleted step lines
		if rxStepNum.MatchString(line) || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
			if s := cleanStep(line); s != "" {
				steps = append(steps, s)
			}
		}
	}

	if len(steps) == 0 {
		rec.Journey = ListField{Items: nil, Fallback: true}
		return rec, false
	}
	rec.Journey = ListField{Items: steps}
	return rec, true
}

func cleanStep(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-•* ")
	s = rxStepNum.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(s)
}

// ParseFeasibility scans labelled lines of the form
//
//	Tech Stack: React/Go/Postgres
//	Feasibility Score: 8
//	MVP Timeline: 6 weeks
//	Main Technical Risk: ...
//
// Missing or malformed fields take the documented defaults.
func ParseFeasibility(raw string) (FeasibilityRecord, bool) {
	rec := FeasibilityRecord{
		Score:         IntField{Value: DefaultScore, Fallback: true},
		TechStack:     ListField{Fallback: true},
		TimelineWeeks: IntField{Value: DefaultTimelineWeeks, Fallback: true},
		MainRisk:      TextField{Value: FallbackText, Fallback: true},
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if line == "" || idx < 0 {
			continue
		}
		// classify by the label only; values may mention weeks or scores too
		label := strings.ToLower(line[:idx])
		rest := strings.TrimSpace(line[idx+1:])

		switch {
		case strings.Contains(label, "stack"):
			if items := splitStack(rest); len(items) > 0 {
				rec.TechStack = ListField{Items: items}
			}
		case strings.Contains(label, "feasibility") || strings.Contains(label, "score"):
			if n, ok := firstNumber(rest); ok {
				rec.Score = IntField{Value: clamp(n, 1, 10)}
			}
		case strings.Contains(label, "timeline") || strings.Contains(label, "week"):
			if n, ok := firstNumber(rest); ok && n > 0 {
				rec.TimelineWeeks = IntField{Value: n}
			}
		case strings.Contains(label, "risk"):
			if rest != "" {
				rec.MainRisk = TextField{Value: rest}
			}
		}
	}

	ok := !rec.Score.Fallback && !rec.TechStack.Fallback &&
		!rec.TimelineWeeks.Fallback && !rec.MainRisk.Fallback
	return rec, ok
}

// ParsePlanning collects bulleted items under the "MVP Features", "Key
// Risks" and "Next Steps" headings. Item caps keep the report compact.
func ParsePlanning(raw string) (PlanningRecord, bool) {
	rec := PlanningRecord{
		MVPFeatures: ListField{Fallback: true},
		Risks:       ListField{Fallback: true},
		NextSteps:   ListField{Fallback: true},
	}

	var features, risks, steps []string
	section := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		// bullet prefix wins: item text may itself mention a section word
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			item := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
			if item == "" {
				continue
			}
			switch section {
			case "features":
				if len(features) < 3 {
					features = append(features, item)
				}
			case "risks":
				if len(risks) < 2 {
					risks = append(risks, item)
				}
			case "steps":
				if len(steps) < 3 {
					steps = append(steps, item)
				}
			}
		case strings.Contains(lower, "mvp features"):
			section = "features"
		case strings.Contains(lower, "risks"):
			section = "risks"
		case strings.Contains(lower, "next steps"):
			section = "steps"
		}
	}

	if len(features) > 0 {
		rec.MVPFeatures = ListField{Items: features}
	}
	if len(risks) > 0 {
		rec.Risks = ListField{Items: risks}
	}
	if len(steps) > 0 {
		rec.NextSteps = ListField{Items: steps}
	}

	ok := !rec.MVPFeatures.Fallback && !rec.Risks.Fallback && !rec.NextSteps.Fallback
	return rec, ok
}

func splitStack(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ',' || r == '+'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func firstNumber(s string) (int, bool) {
	m := rxNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
