package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

const runColumns = `id, tenant_id, concept, variant, status, started_at,
       journey, narrative, score, timeline_weeks, tech_stack, main_risk,
       mvp_features, risks, next_steps, fallback_fields,
       prompt_tokens, completion_tokens, duration_ms, report_url`

func (r *RunRepository) Save(ctx context.Context, b *domain.Bundle) error {
	const q = `
INSERT INTO analysis_runs
(id, tenant_id, concept, variant, status, started_at,
 journey, narrative, score, timeline_weeks, tech_stack, main_risk,
 mvp_features, risks, next_steps, fallback_fields,
 prompt_tokens, completion_tokens, duration_ms, report_url)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (id) DO UPDATE SET
 status=EXCLUDED.status,
 journey=EXCLUDED.journey, narrative=EXCLUDED.narrative,
 score=EXCLUDED.score, timeline_weeks=EXCLUDED.timeline_weeks,
 tech_stack=EXCLUDED.tech_stack, main_risk=EXCLUDED.main_risk,
 mvp_features=EXCLUDED.mvp_features, risks=EXCLUDED.risks, next_steps=EXCLUDED.next_steps,
 fallback_fields=EXCLUDED.fallback_fields,
 prompt_tokens=EXCLUDED.prompt_tokens, completion_tokens=EXCLUDED.completion_tokens,
 duration_ms=EXCLUDED.duration_ms, report_url=EXCLUDED.report_url;
`
	started := b.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.TenantID, b.Concept.Text, b.Concept.Variant, string(b.Status), started,
		join(b.Experience.Journey.Items), b.Experience.Narrative.Value,
		b.Feasibility.Score.Value, b.Feasibility.TimelineWeeks.Value,
		join(b.Feasibility.TechStack.Items), b.Feasibility.MainRisk.Value,
		join(b.Planning.MVPFeatures.Items), join(b.Planning.Risks.Items),
		join(b.Planning.NextSteps.Items), strings.Join(b.FallbackFields(), ","),
		b.Usage.Prompt, b.Usage.Completion, b.DurationMS, b.ReportURL,
	)
	return err
}

func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Bundle, error) {
	const q = `SELECT ` + runColumns + `
FROM analysis_runs WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanRun(r.db.QueryRowContext(ctx, q, tenant, id))
}

func (r *RunRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Bundle, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + runColumns + `
FROM analysis_runs WHERE tenant_id=$1 ORDER BY started_at DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *RunRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Bundle, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	const q = `SELECT ` + runColumns + `
FROM analysis_runs WHERE tenant_id=$1 ORDER BY started_at DESC, id DESC LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *RunRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, float64, int64, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status='failed' THEN 1 ELSE 0 END),0),
       COALESCE(AVG(score),0),
       COALESCE(SUM(prompt_tokens+completion_tokens),0)
FROM analysis_runs
WHERE tenant_id=$1 AND started_at >= NOW() - ($2 || ' days')::interval;
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
	if err := row.Scan(
		&b.ID, &b.TenantID, &b.Concept.Text, &b.Concept.Variant, &b.Status, &b.StartedAt,
		&journey, &narrative, &b.Feasibility.Score.Value, &b.Feasibility.TimelineWeeks.Value,
		&stack, &risk, &features, &risks, &steps, &fallbacks,
		&b.Usage.Prompt, &b.Usage.Completion, &b.DurationMS, &b.ReportURL,
	); err != nil {
		return nil, err
	}
	b.Experience.Journey.Items = split(journey)
	b.Experience.Narrative.Value = narrative
	b.Feasibility.TechStack.Items = split(stack)
	b.Feasibility.MainRisk.Value = risk
	b.Planning.MVPFeatures.Items = split(features)
	b.Planning.Risks.Items = split(risks)
	b.Planning.NextSteps.Items = split(steps)
	markFallbacks(&b, fallbacks)
	return &b, nil
}

func collect(rows *sql.Rows) ([]*domain.Bundle, error) {
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

func join(items []string) string { return strings.Join(items, "\n") }

func split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func markFallbacks(b *domain.Bundle, csv string) {
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
