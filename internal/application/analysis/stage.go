package analysis

import (
	"context"
	"errors"
	"log"
	"time"

	domai "github.com/bryanwahyu/automaton-poc/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-poc/internal/domain/stagefailures"
)

// Per-stage token ceilings. The journey stage needs the least room, the
// planning stage produces three lists and needs the most.
const (
	experienceMaxTokens  = 200
	feasibilityMaxTokens = 250
	planningMaxTokens    = 300
)

// callTimeout bounds one generative call so an unresponsive provider cannot
// stall the whole batch.
const callTimeout = 120 * time.Second

// stage is one analysis phase. apply parses the reply into the bundle's
// record; apply with an empty reply always yields the all-fallback record,
// which is how exhausted retries degrade.
type stage interface {
	name() domain.StageName
	maxTokens() int
	buildPrompt(b *domain.Bundle) string
	apply(b *domain.Bundle, raw string) (allExtracted bool)
}

func pipelineStages() []stage {
	return []stage{experienceStage{}, feasibilityStage{}, planningStage{}}
}

type experienceStage struct{}

func (experienceStage) name() domain.StageName { return domain.StageExperience }
func (experienceStage) maxTokens() int         { return experienceMaxTokens }
func (experienceStage) buildPrompt(b *domain.Bundle) string {
	return domain.ExperiencePrompt(b.Concept)
}
func (experienceStage) apply(b *domain.Bundle, raw string) bool {
	rec, ok := domain.ParseExperience(raw)
	b.Experience = rec
	return ok
}

type feasibilityStage struct{}

func (feasibilityStage) name() domain.StageName { return domain.StageFeasibility }
func (feasibilityStage) maxTokens() int         { return feasibilityMaxTokens }
func (feasibilityStage) buildPrompt(b *domain.Bundle) string {
	return domain.FeasibilityPrompt(b.Concept, b.Experience)
}
func (feasibilityStage) apply(b *domain.Bundle, raw string) bool {
	rec, ok := domain.ParseFeasibility(raw)
	b.Feasibility = rec
	return ok
}

type planningStage struct{}

func (planningStage) name() domain.StageName { return domain.StagePlanning }
func (planningStage) maxTokens() int         { return planningMaxTokens }
func (planningStage) buildPrompt(b *domain.Bundle) string {
	return domain.PlanningPrompt(b.Concept, b.Feasibility)
}
func (planningStage) apply(b *domain.Bundle, raw string) bool {
	rec, ok := domain.ParsePlanning(raw)
	b.Planning = rec
	return ok
}

// runStage executes one stage: build prompt, call the generator with the
// stage ceiling, parse the reply into the bundle. Transient failures get one
// immediate retry; after that the stage degrades to an all-fallback record
// and the failure is recorded. It never returns an error to the pipeline.
func (s *Service) runStage(ctx context.Context, st stage, b *domain.Bundle) {
	p := st.buildPrompt(b)
	ceiling := st.maxTokens()
	if s.MaxTokensPerStage > 0 && s.MaxTokensPerStage < ceiling {
		ceiling = s.MaxTokensPerStage
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		// In-flight calls run to completion even when the batch is being
		// cancelled; an interrupted call burns tokens without a record.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callTimeout)
		text, usage, err := s.Generator.Complete(callCtx, p, ceiling)
		cancel()
		if err == nil {
			b.Usage.Add(usage)
			st.apply(b, text)
			return
		}
		lastErr = err
		if !errors.Is(err, domai.ErrTransient) && !errors.Is(err, domai.ErrQuotaExceeded) {
			break
		}
	}

	log.Printf("stage %s exhausted retries for run=%s: %v", st.name(), b.ID, lastErr)
	st.apply(b, "") // all-fallback record
	s.recordFailure(b, st.name(), lastErr)
}

func (s *Service) recordFailure(b *domain.Bundle, stageName domain.StageName, err error) {
	if s.Failures == nil || err == nil {
		return
	}
	f := &stagefailures.StageFailure{
		TenantID:  b.TenantID,
		RunID:     string(b.ID),
		Stage:     string(stageName),
		Phase:     "complete",
		Message:   err.Error(),
		CreatedAt: s.Clock.Now(),
	}
	if serr := s.Failures.Save(context.Background(), f); serr != nil {
		log.Printf("stage failure save error: %v", serr)
	}
}
