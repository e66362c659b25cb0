package analysis

// FallbackText is the sentinel stored in a text field the parser could not
// extract. Rendered with a visible marker, never presented as real analysis.
const FallbackText = "(not extracted)"

// Documented defaults substituted when extraction fails.
const (
	DefaultScore         = 5 // neutral midpoint of the 1-10 scale
	DefaultTimelineWeeks = 4
)

// TextField is a free-text value tagged with its source: extracted from the
// model reply, or substituted by the parser.
type TextField struct {
	Value    string `json:"value"`
	Fallback bool   `json:"fallback,omitempty"`
}

// IntField is a numeric value with the same extracted/fallback tag.
type IntField struct {
	Value    int  `json:"value"`
	Fallback bool `json:"fallback,omitempty"`
}

// ListField is an ordered string list with the same extracted/fallback tag.
type ListField struct {
	Items    []string `json:"items"`
	Fallback bool     `json:"fallback,omitempty"`
}

// ExperienceRecord is the output of the experience-design stage.
type ExperienceRecord struct {
	Journey   ListField `json:"journey"` // ordered journey steps
	Narrative TextField `json:"narrative"`
}

func (r ExperienceRecord) AllFallback() bool {
	return r.Journey.Fallback && r.Narrative.Fallback
}

// FeasibilityRecord is the output of the technical-feasibility stage.
type FeasibilityRecord struct {
	Score         IntField  `json:"score"` // 1..10
	TechStack     ListField `json:"tech_stack"`
	TimelineWeeks IntField  `json:"timeline_weeks"`
	MainRisk      TextField `json:"main_risk"`
}

func (r FeasibilityRecord) AllFallback() bool {
	return r.Score.Fallback && r.TechStack.Fallback && r.TimelineWeeks.Fallback && r.MainRisk.Fallback
}

// PlanningRecord is the output of the product-planning stage.
type PlanningRecord struct {
	MVPFeatures ListField `json:"mvp_features"`
	Risks       ListField `json:"risks"`
	NextSteps   ListField `json:"next_steps"`
}

func (r PlanningRecord) AllFallback() bool {
	return r.MVPFeatures.Fallback && r.Risks.Fallback && r.NextSteps.Fallback
}

// FallbackFields lists the flagged field names of all three records, used
// for persistence and for the report's degradation markers.
func (b *Bundle) FallbackFields() []string {
	var out []string
	add := func(name string, fb bool) {
		if fb {
			out = append(out, name)
		}
	}
	add("journey", b.Experience.Journey.Fallback)
	add("narrative", b.Experience.Narrative.Fallback)
	add("score", b.Feasibility.Score.Fallback)
	add("tech_stack", b.Feasibility.TechStack.Fallback)
	add("timeline_weeks", b.Feasibility.TimelineWeeks.Fallback)
	add("main_risk", b.Feasibility.MainRisk.Fallback)
	add("mvp_features", b.Planning.MVPFeatures.Fallback)
	add("risks", b.Planning.Risks.Fallback)
	add("next_steps", b.Planning.NextSteps.Fallback)
	return out
}
