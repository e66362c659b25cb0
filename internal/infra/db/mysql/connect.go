package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the run and stage-failure tables when they do not
// exist yet, so the tool works against a fresh database without a separate
// migration step.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
  id VARCHAR(64) PRIMARY KEY,
  tenant_id VARCHAR(64) NOT NULL,
  concept TEXT NOT NULL,
  variant VARCHAR(32) NOT NULL DEFAULT '',
  status VARCHAR(32) NOT NULL,
  started_at DATETIME NOT NULL,
  journey TEXT,
  narrative TEXT,
  score INT NOT NULL DEFAULT 0,
  timeline_weeks INT NOT NULL DEFAULT 0,
  tech_stack TEXT,
  main_risk TEXT,
  mvp_features TEXT,
  risks TEXT,
  next_steps TEXT,
  fallback_fields TEXT,
  prompt_tokens INT NOT NULL DEFAULT 0,
  completion_tokens INT NOT NULL DEFAULT 0,
  duration_ms BIGINT NOT NULL DEFAULT 0,
  report_url TEXT,
  KEY idx_tenant_started (tenant_id, started_at)
)`,
		`CREATE TABLE IF NOT EXISTS analysis_stage_failures (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  tenant_id VARCHAR(64) NOT NULL,
  run_id VARCHAR(64) NOT NULL,
  stage VARCHAR(32),
  phase VARCHAR(32),
  message TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  KEY idx_tenant_run (tenant_id, run_id)
)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
