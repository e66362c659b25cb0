package analysis

import (
	"time"
)

// ID tipe untuk satu analysis run
type RunID string

// StageName enum
type StageName string

const (
	StageExperience  StageName = "experience"
	StageFeasibility StageName = "feasibility"
	StagePlanning    StageName = "planning"
)

// Status enum untuk satu bundle
type Status string

const (
	StatusSucceeded       Status = "succeeded"
	StatusPartiallyFailed Status = "partially_failed"
	StatusFailed          Status = "failed"
)

// Concept value object: the raw product idea plus an optional variant label.
// Immutable after creation.
type Concept struct {
	Text    string `json:"text"`
	Variant string `json:"variant,omitempty"`
}

// Label returns the human label used in summary tables.
func (c Concept) Label() string {
	if c.Variant == "" || c.Variant == VariantOriginal {
		return c.Text
	}
	return c.Text + " [" + c.Variant + "]"
}

// TokenUsage counts tokens consumed by generative calls. Counters only grow
// within a run's lifetime.
type TokenUsage struct {
	Prompt     int `json:"prompt_tokens"`
	Completion int `json:"completion_tokens"`
}

func (u *TokenUsage) Add(o TokenUsage) {
	u.Prompt += o.Prompt
	u.Completion += o.Completion
}

func (u TokenUsage) Total() int { return u.Prompt + u.Completion }

// Aggregate Root: Bundle holds the complete three-stage analysis of one
// concept. Owned by the orchestrator until handed to the report assembler.
type Bundle struct {
	ID          RunID             `json:"id"`
	TenantID    string            `json:"tenant_id"`
	Concept     Concept           `json:"concept"`
	StartedAt   time.Time         `json:"started_at"`
	Experience  ExperienceRecord  `json:"experience"`
	Feasibility FeasibilityRecord `json:"feasibility"`
	Planning    PlanningRecord    `json:"planning"`
	Usage       TokenUsage        `json:"usage"`
	Status      Status            `json:"status"`
	DurationMS  int64             `json:"duration_ms"`
	ReportURL   string            `json:"report_url,omitempty"`
}

// Finalize derives the bundle status from its stage records. A stage whose
// record is entirely fallback counts as failed; any failed stage downgrades
// the bundle, three failed stages mark it failed outright.
func (b *Bundle) Finalize() {
	failed := 0
	if b.Experience.AllFallback() {
		failed++
	}
	if b.Feasibility.AllFallback() {
		failed++
	}
	if b.Planning.AllFallback() {
		failed++
	}
	switch failed {
	case 0:
		b.Status = StatusSucceeded
	case 3:
		b.Status = StatusFailed
	default:
		b.Status = StatusPartiallyFailed
	}
}

// BatchResult is the outcome of one orchestrator run: exactly one bundle per
// input concept, in input order, plus the summed token usage.
type BatchResult struct {
	Bundles []*Bundle  `json:"bundles"`
	Usage   TokenUsage `json:"usage"`
	Failed  int        `json:"failed"`
}
