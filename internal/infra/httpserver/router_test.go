package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/automaton-poc/internal/application"
	appanalysis "github.com/bryanwahyu/automaton-poc/internal/application/analysis"
	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
)

type stubGenerator struct{}

func (stubGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, domain.TokenUsage, error) {
	return "", domain.TokenUsage{}, nil
}

// recordingRepo captures saved bundles so background batches can be observed.
type recordingRepo struct {
	mu    sync.Mutex
	saved []*domain.Bundle
}

func (r *recordingRepo) Save(ctx context.Context, b *domain.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, b)
	return nil
}

func (r *recordingRepo) snapshot() []*domain.Bundle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Bundle{}, r.saved...)
}

func (r *recordingRepo) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Bundle, error) {
	return nil, sql.ErrNoRows
}

func (r *recordingRepo) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Bundle, error) {
	return r.snapshot(), nil
}

func (r *recordingRepo) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Bundle, error) {
	return r.snapshot(), nil
}

func (r *recordingRepo) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, float64, int64, error) {
	return 0, 0, 0, 0, nil
}

func TestHandleAnalyzeModeIsCaseInsensitive(t *testing.T) {
	repo := &recordingRepo{}
	svc := &appanalysis.Service{
		Generator: stubGenerator{},
		Repo:      repo,
		Clock:     application.SystemClock{},
	}
	h := NewRouter(svc, nil, Options{})

	body := strings.NewReader(`{"concepts":["a water tracker"],"mode":"REPEAT"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// the batch runs in the background; wait for the fan-out to be persisted
	deadline := time.Now().Add(2 * time.Second)
	var saved []*domain.Bundle
	for {
		saved = repo.snapshot()
		if len(saved) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("uppercase repeat mode must fan out to 3 bundles, got %d", len(saved))
		}
		time.Sleep(10 * time.Millisecond)
	}

	wantVariants := []string{domain.VariantOriginal, domain.VariantB2B, domain.VariantB2C}
	for i, b := range saved {
		if b.Concept.Variant != wantVariants[i] {
			t.Errorf("bundle %d variant = %q, want %q", i, b.Concept.Variant, wantVariants[i])
		}
	}
}

func TestHandleAnalyzeRejectsUnknownMode(t *testing.T) {
	svc := &appanalysis.Service{
		Generator: stubGenerator{},
		Clock:     application.SystemClock{},
	}
	h := NewRouter(svc, nil, Options{})

	body := strings.NewReader(`{"concepts":["a water tracker"],"mode":"parallel"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
