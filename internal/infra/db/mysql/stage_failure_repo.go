package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/automaton-poc/internal/domain/stagefailures"
)

type StageFailureRepository struct {
	db *sql.DB
}

func NewStageFailureRepository(db *sql.DB) *StageFailureRepository {
	return &StageFailureRepository{db: db}
}

func (r *StageFailureRepository) Save(ctx context.Context, f *domain.StageFailure) error {
	const q = `
INSERT INTO analysis_stage_failures
  (tenant_id, run_id, stage, phase, message, created_at)
VALUES (?,?,?,?,?,?)
`
	tenant := stringOrDash(f.TenantID)
	run := stringOrDash(f.RunID)
	stage := stringOrDash(f.Stage)
	phase := stringOrDash(f.Phase)
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, tenant, run, stage, phase, msg, created)
	return err
}

func (r *StageFailureRepository) ListByRun(ctx context.Context, tenant string, runID string, limit int) ([]*domain.StageFailure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, run_id, stage, phase, message, created_at
FROM analysis_stage_failures
WHERE tenant_id = ? AND run_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.StageFailure
	for rows.Next() {
		var f domain.StageFailure
		if err := rows.Scan(&f.ID, &f.TenantID, &f.RunID, &f.Stage, &f.Phase, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
