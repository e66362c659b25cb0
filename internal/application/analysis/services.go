package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-poc/internal/application"
	domai "github.com/bryanwahyu/automaton-poc/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-poc/internal/domain/stagefailures"
)

// Service implements use-cases for concept analysis.
// Safe for concurrent use; per-run state lives in the bundles themselves.
type Service struct {
	Generator domai.Client
	Repo      domain.Repository        // optional: nil disables persistence
	Failures  stagefailures.Repository // optional
	Renderer  domain.ReportRenderer    // optional: nil skips report rendering
	Artifacts domain.ArtifactStore     // optional: nil keeps the report local
	Clock     application.Clock

	// MaxTokensPerStage, when > 0, caps every stage ceiling.
	MaxTokensPerStage int
	// Concurrency bounds parallel pipelines in a batch; <= 1 runs them
	// sequentially.
	Concurrency int
}

//
// ==== USE CASES ====
//

// Command to analyze one or more concepts
type AnalyzeCommand struct {
	TenantID   string
	Concepts   []string
	Mode       domain.Mode
	ReportPath string // local path for the rendered report; empty uses a temp file
}

type AnalyzeResult struct {
	BatchID     string            `json:"batch_id"`
	Bundles     []*domain.Bundle  `json:"bundles"`
	Usage       domain.TokenUsage `json:"usage"`
	Failed      int               `json:"failed"`
	ReportURL   string            `json:"report_url,omitempty"`
	ReportPath  string            `json:"report_path,omitempty"`
	TotalTokens int               `json:"total_tokens"`
}

// AnalyzeConcept runs the three stages in fixed order for one concept.
// Each stage's record feeds the next stage's prompt. The pipeline never
// aborts early: a failed stage degrades to fallback and the rest still run.
func (s *Service) AnalyzeConcept(ctx context.Context, tenant string, c domain.Concept) *domain.Bundle {
	now := s.Clock.Now()
	b := &domain.Bundle{
		ID:        domain.RunID(uuid.New().String()),
		TenantID:  tenant,
		Concept:   c,
		StartedAt: now,
	}

	for _, st := range pipelineStages() {
		s.runStage(ctx, st, b)
	}

	b.DurationMS = s.Clock.Now().Sub(now).Milliseconds()
	b.Finalize()
	return b
}

// RunBatch processes each concept independently through its own pipeline.
// Output order equals input order regardless of completion order, every
// input yields exactly one bundle, and one concept's failure never aborts
// the others. Aggregate usage is merged single-writer after the workers
// finish so parallel and sequential runs agree.
func (s *Service) RunBatch(ctx context.Context, tenant string, concepts []domain.Concept) domain.BatchResult {
	bundles := make([]*domain.Bundle, len(concepts))

	limit := s.Concurrency
	if limit <= 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, c := range concepts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c domain.Concept) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				// Structural failure isolation: anything unrecoverable in
				// one pipeline becomes a failed bundle, not a dead batch.
				if r := recover(); r != nil {
					log.Printf("pipeline panic for concept %q: %v", c.Text, r)
					bundles[i] = s.failedBundle(tenant, c)
				}
			}()
			if ctx.Err() != nil {
				// Stop dispatching work once cancelled; in-flight stage
				// calls elsewhere still run to completion.
				bundles[i] = s.failedBundle(tenant, c)
				return
			}
			bundles[i] = s.AnalyzeConcept(ctx, tenant, c)
		}(i, c)
	}
	wg.Wait()

	res := domain.BatchResult{Bundles: bundles}
	for _, b := range bundles {
		res.Usage.Add(b.Usage)
		if b.Status == domain.StatusFailed {
			res.Failed++
		}
	}
	return res
}

// failedBundle builds the all-fallback bundle used when a pipeline could not
// run at all. Every input concept must still appear in the batch result.
func (s *Service) failedBundle(tenant string, c domain.Concept) *domain.Bundle {
	b := &domain.Bundle{
		ID:        domain.RunID(uuid.New().String()),
		TenantID:  tenant,
		Concept:   c,
		StartedAt: s.Clock.Now(),
	}
	b.Experience, _ = domain.ParseExperience("")
	b.Feasibility, _ = domain.ParseFeasibility("")
	b.Planning, _ = domain.ParsePlanning("")
	b.Finalize()
	return b
}

// Analyze expands the input per mode, runs the batch, assembles and renders
// the report, uploads the artifact when a store is wired, and persists the
// bundles. Per-item failures are already folded into the bundles; only
// collaborator failures (render, upload) surface as errors.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	mode := cmd.Mode
	if mode == "" {
		mode = domain.ModeSingle
	}

	var concepts []domain.Concept
	for _, text := range cmd.Concepts {
		concepts = append(concepts, domain.Concept{Text: text})
	}
	concepts = domain.ExpandAll(concepts, mode)

	batchID := fmt.Sprintf("%s-%s", uuid.New().String(), mode)
	res := s.RunBatch(ctx, cmd.TenantID, concepts)

	out := AnalyzeResult{
		BatchID:     batchID,
		Bundles:     res.Bundles,
		Usage:       res.Usage,
		Failed:      res.Failed,
		TotalTokens: res.Usage.Total(),
	}

	reportURL, reportPath, err := s.renderReport(ctx, batchID, cmd.ReportPath, res)
	if err != nil {
		return out, err
	}
	out.ReportURL = reportURL
	out.ReportPath = reportPath

	for _, b := range res.Bundles {
		b.ReportURL = reportURL
		if s.Repo != nil {
			if err := s.Repo.Save(ctx, b); err != nil {
				log.Printf("bundle save error run=%s: %v", b.ID, err)
			}
		}
	}
	return out, nil
}

// AnalyzeUntilDone runs Analyze with context.Background() so a disconnected
// client does not cancel a batch that is already spending tokens. Meant to
// be called from a goroutine in the router.
func (s *Service) AnalyzeUntilDone(cmd AnalyzeCommand) (AnalyzeResult, error) {
	return s.Analyze(context.Background(), cmd)
}

func (s *Service) renderReport(ctx context.Context, batchID, path string, res domain.BatchResult) (url, localPath string, err error) {
	if s.Renderer == nil {
		return "", "", nil
	}
	payload := domain.AssembleReport(res, s.Clock.Now())

	localPath = path
	upload := localPath == ""
	if upload {
		tempDir := filepath.Join(".", "temp")
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return "", "", err
		}
		localPath = filepath.Join(tempDir, batchID+".md")
	}
	if err := s.Renderer.WriteFile(payload, localPath); err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}

	if s.Artifacts == nil {
		return "", localPath, nil
	}
	key := fmt.Sprintf("reports/%s.md", batchID)
	if upload {
		url, err = s.Artifacts.UploadAndCleanup(ctx, localPath, key)
		localPath = ""
	} else {
		url, err = s.Artifacts.Upload(ctx, localPath, key)
	}
	if err != nil {
		return "", localPath, fmt.Errorf("upload report: %w", err)
	}
	return url, localPath, nil
}

// Latest returns the last N bundles per tenant
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Bundle, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get returns one bundle by run ID
func (s *Service) Get(ctx context.Context, tenant string, id domain.RunID) (*domain.Bundle, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Paginate lists bundles page by page
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Bundle, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// Summary aggregates run results for the last N days
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, failed, avgScore, tokens, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_runs":   total,
		"failed_runs":  failed,
		"avg_score":    avgScore,
		"total_tokens": tokens,
	}, nil
}
