package stagefailures

import (
	"context"
)

// Repository defines persistence for stage failures
type Repository interface {
	Save(ctx context.Context, f *StageFailure) error
	ListByRun(ctx context.Context, tenant string, runID string, limit int) ([]*StageFailure, error)
}
