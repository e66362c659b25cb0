package stagefailures

import "time"

// StageFailure records one stage call whose retries exhausted. The pipeline
// still produced a fallback record; this entry exists for auditing why.
type StageFailure struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage,omitempty"`
	Phase     string    `json:"phase,omitempty"` // complete | parse | other
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
