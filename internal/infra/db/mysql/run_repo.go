package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, tenant_id, concept, variant, status, started_at,
       journey, narrative, score, timeline_weeks, tech_stack, main_risk,
       mvp_features, risks, next_steps, fallback_fields,
       prompt_tokens, completion_tokens, duration_ms, report_url`

// Save insert/update satu analysis run
func (r *RunRepository) Save(ctx context.Context, b *domain.Bundle) error {
	const q = `
INSERT INTO analysis_runs
(id, tenant_id, concept, variant, status, started_at,
 journey, narrative, score, timeline_weeks, tech_stack, main_risk,
 mvp_features, risks, next_steps, fallback_fields,
 prompt_tokens, completion_tokens, duration_ms, report_url)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 journey=VALUES(journey), narrative=VALUES(narrative),
 score=VALUES(score), timeline_weeks=VALUES(timeline_weeks),
 tech_stack=VALUES(tech_stack), main_risk=VALUES(main_risk),
 mvp_features=VALUES(mvp_features), risks=VALUES(risks), next_steps=VALUES(next_steps),
 fallback_fields=VALUES(fallback_fields),
 prompt_tokens=VALUES(prompt_tokens), completion_tokens=VALUES(completion_tokens),
 duration_ms=VALUES(duration_ms), report_url=VALUES(report_url);
`
	tenant := stringOrDash(b.TenantID)
	status := stringOrDash(string(b.Status))
	started := b.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		b.ID, tenant, b.Concept.Text, b.Concept.Variant, status, started,
		joinLines(b.Experience.Journey.Items), b.Experience.Narrative.Value,
		b.Feasibility.Score.Value, b.Feasibility.TimelineWeeks.Value,
		joinLines(b.Feasibility.TechStack.Items), b.Feasibility.MainRisk.Value,
		joinLines(b.Planning.MVPFeatures.Items), joinLines(b.Planning.Risks.Items),
		joinLines(b.Planning.NextSteps.Items), strings.Join(b.FallbackFields(), ","),
		b.Usage.Prompt, b.Usage.Completion, b.DurationMS, b.ReportURL,
	)
	return err
}

// Get by ID + Tenant
func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Bundle, error) {
	const q = `SELECT ` + runColumns + `
FROM analysis_runs
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanRun(row)
}

// Latest runs per tenant
func (r *RunRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Bundle, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + runColumns + `
FROM analysis_runs
WHERE tenant_id=? ORDER BY started_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Paginate runs per tenant, newest first
func (r *RunRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Bundle, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	const q = `SELECT ` + runColumns + `
FROM analysis_runs
WHERE tenant_id=? ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Summary rekap hasil run N hari terakhir
func (r *RunRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, float64, int64, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(status='failed'),0),
       COALESCE(AVG(score),0),
       COALESCE(SUM(prompt_tokens+completion_tokens),0)
FROM analysis_runs
WHERE tenant_id=? AND started_at >= NOW() - INTERVAL ? DAY;
`
	var total, failed int
	var avgScore float64
	var tokens int64
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(&total, &failed, &avgScore, &tokens)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return total, failed, avgScore, tokens, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Bundle, error) {
	var b domain.Bundle
	var journey, narrative, stack, risk, features, risks, steps, fallbacks string
	var score, weeks int
	if err := row.Scan(
		&b.ID, &b.TenantID, &b.Concept.Text, &b.Concept.Variant, &b.Status, &b.StartedAt,
		&journey, &narrative, &score, &weeks, &stack, &risk,
		&features, &risks, &steps, &fallbacks,
		&b.Usage.Prompt, &b.Usage.Completion, &b.DurationMS, &b.ReportURL,
	); err != nil {
		return nil, err
	}

	b.Experience.Journey.Items = splitLines(journey)
	b.Experience.Narrative.Value = narrative
	b.Feasibility.Score.Value = score
	b.Feasibility.TimelineWeeks.Value = weeks
	b.Feasibility.TechStack.Items = splitLines(stack)
	b.Feasibility.MainRisk.Value = risk
	b.Planning.MVPFeatures.Items = splitLines(features)
	b.Planning.Risks.Items = splitLines(risks)
	b.Planning.NextSteps.Items = splitLines(steps)
	applyFallbackFields(&b, fallbacks)
	return &b, nil
}

func collectRuns(rows *sql.Rows) ([]*domain.Bundle, error) {
	var out []*domain.Bundle
	for rows.Next() {
		b, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
