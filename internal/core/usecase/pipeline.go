package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

const (
	defaultStageTimeout   = 10 * time.Second
	defaultComposeTimeout = 25 * time.Second
	auditPublishTimeout   = 2 * time.Second
)

// PipelineConfig carries the tunables the orchestrator and its stages need.
// Zero values fall back to safe defaults.
type PipelineConfig struct {
	CanonicalLanguage string
	ConfidenceFloor   float64
	CallerID          string
	RetrieveLimit     int
	ContextTopN       int
	StageTimeout      time.Duration
	// ComposeTimeout is separate because generation is allowed more time
	// than any other external call.
	ComposeTimeout time.Duration
}

// Pipeline runs a query through normalize, profile lookup, retrieve, filter,
// compose and localize. Every stage failure downgrades to that stage's
// fallback; the only error Answer returns is invalid input. Each stage run
// leaves a trace, and the full trace is published to the audit sink without
// blocking the response.
type Pipeline struct {
	caps       Capabilities
	normalizer *Normalizer
	retriever  *Retriever
	filter     *SafetyFilter
	composer   *Composer
	lexicon    ports.Lexicon
	cfg        PipelineConfig
	logger     *slog.Logger
}

func NewPipeline(
	caps Capabilities,
	lexicon ports.Lexicon,
	corpus ports.FallbackCorpus,
	cfg PipelineConfig,
	logger *slog.Logger,
) *Pipeline {
	if cfg.CanonicalLanguage == "" {
		cfg.CanonicalLanguage = "en"
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = defaultStageTimeout
	}
	if cfg.ComposeTimeout <= 0 {
		cfg.ComposeTimeout = defaultComposeTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		caps:       caps,
		normalizer: NewNormalizer(caps.Language, lexicon, cfg.CanonicalLanguage, cfg.ConfidenceFloor),
		retriever:  NewRetriever(caps.Knowledge, corpus, lexicon, cfg.CallerID, cfg.RetrieveLimit, logger),
		filter:     NewSafetyFilter(lexicon),
		composer:   NewComposer(caps.Generator, lexicon, cfg.ContextTopN, logger),
		lexicon:    lexicon,
		cfg:        cfg,
		logger:     logger,
	}
}

func (p *Pipeline) Answer(ctx context.Context, query domain.Query) (*domain.PipelineResult, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query text is empty"))
	}

	startedAt := time.Now().UTC()
	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "account_id", query.AccountID)

	// Normalizer and profile lookup have no data dependency on each other.
	normalized := NormalizedQuery{
		CanonicalText: text,
		Language:      domain.DetectedLanguage{Code: p.cfg.CanonicalLanguage},
	}
	var profile *domain.MedicalProfile

	normDone := make(chan domain.StageTrace, 1)
	profDone := make(chan domain.StageTrace, 1)
	go func() {
		normDone <- p.runStage(ctx, logger, domain.StageNormalize, p.cfg.StageTimeout, p.caps.HasLanguage(), func(ctx context.Context) error {
			out, err := p.normalizer.Normalize(ctx, text)
			if err != nil {
				return err
			}
			normalized = out
			return nil
		})
	}()
	go func() {
		profDone <- p.runStage(ctx, logger, domain.StageProfile, p.cfg.StageTimeout, p.caps.HasProfiles() && query.AccountID != "", func(ctx context.Context) error {
			found, err := p.caps.Profiles.GetProfile(ctx, query.AccountID)
			if err != nil {
				if domain.IsKind(err, domain.ErrProfileNotFound) {
					return nil
				}
				return err
			}
			profile = found
			return nil
		})
	}()

	traces := make([]domain.StageTrace, 0, 6)
	normTrace := <-normDone
	traces = append(traces, normTrace, <-profDone)

	// Detection failed but the caller declared a language: localize to it.
	if !normTrace.Success && p.caps.HasLanguage() && query.LanguageHint != "" {
		normalized.Language.Code = query.LanguageHint
	}

	localizeAvailable := p.caps.HasLanguage() ||
		strings.EqualFold(normalized.Language.Code, p.cfg.CanonicalLanguage)

	if p.isGreeting(normalized.CanonicalText) {
		welcome := p.lexicon.Messages().Welcome
		answer := welcome
		traces = append(traces, p.runStage(ctx, logger, domain.StageLocalize, p.cfg.StageTimeout, localizeAvailable, func(ctx context.Context) error {
			out, err := p.normalizer.Localize(ctx, welcome, normalized.Language.Code)
			if err != nil {
				return err
			}
			answer = out
			return nil
		}))

		result := &domain.PipelineResult{
			Answer:          answer,
			CanonicalAnswer: welcome,
			Source:          domain.SourceNone,
			Language:        normalized.Language,
			Greeting:        true,
		}
		p.publishAudit(logger, domain.PipelineAudit{
			RequestID:   requestID,
			AccountID:   query.AccountID,
			Language:    normalized.Language.Code,
			Source:      result.Source,
			Greeting:    true,
			Stages:      traces,
			StartedAt:   startedAt,
			CompletedAt: time.Now().UTC(),
		})
		return result, nil
	}

	retrieved := domain.RetrievedContent{Source: domain.SourceNone}
	traces = append(traces, p.runStage(ctx, logger, domain.StageRetrieve, p.cfg.StageTimeout, true, func(ctx context.Context) error {
		retrieved = p.retriever.Retrieve(ctx, normalized.CanonicalText)
		return nil
	}))

	// Filter failures fail open: the unfiltered chunks pass through and the
	// degraded mode is flagged for audit.
	filtered := domain.FilterResult{SafeChunks: retrieved.Chunks}
	filterTrace := p.runStage(ctx, logger, domain.StageFilter, p.cfg.StageTimeout, true, func(ctx context.Context) error {
		out, err := p.filter.Filter(retrieved.Chunks, profile)
		if err != nil {
			return err
		}
		filtered = out
		return nil
	})
	traces = append(traces, filterTrace)
	unsafeDegraded := !filterTrace.Success && profile.HasRestrictions()
	if unsafeDegraded {
		logger.Error("safety filter degraded, serving unfiltered content", "stage", string(domain.StageFilter))
	}

	composed := ComposeResult{}
	composeTrace := p.runStage(ctx, logger, domain.StageCompose, p.cfg.ComposeTimeout, true, func(ctx context.Context) error {
		composed = p.composer.Compose(ctx, ComposeInput{
			OriginalQuery:  text,
			CanonicalQuery: normalized.CanonicalText,
			DisplayName:    query.DisplayName,
			Source:         retrieved.Source,
			Filter:         filtered,
		})
		return nil
	})
	traces = append(traces, composeTrace)
	if !composeTrace.Success {
		composed = p.consultFallback(query.DisplayName, text)
	}

	finalAnswer := composed.Answer
	traces = append(traces, p.runStage(ctx, logger, domain.StageLocalize, p.cfg.StageTimeout, localizeAvailable, func(ctx context.Context) error {
		out, err := p.normalizer.Localize(ctx, composed.Answer, normalized.Language.Code)
		if err != nil {
			return err
		}
		finalAnswer = out
		return nil
	}))

	result := &domain.PipelineResult{
		Answer:          finalAnswer,
		CanonicalAnswer: composed.Answer,
		Source:          composed.Source,
		Language:        normalized.Language,
		ProfileApplied:  profile != nil,
		ContentFiltered: len(filtered.SafeChunks) < len(retrieved.Chunks),
		Generated:       composed.Generated,
		FollowUps:       composed.FollowUps,
	}

	p.publishAudit(logger, domain.PipelineAudit{
		RequestID:       requestID,
		AccountID:       query.AccountID,
		Language:        normalized.Language.Code,
		Source:          result.Source,
		ProfileApplied:  result.ProfileApplied,
		ContentFiltered: result.ContentFiltered,
		UnsafeDegraded:  unsafeDegraded,
		Stages:          traces,
		StartedAt:       startedAt,
		CompletedAt:     time.Now().UTC(),
	})

	return result, nil
}

// runStage wraps one stage call with a bounded timeout, panic recovery and
// trace bookkeeping. An unavailable capability or an already-canceled
// request skips the call entirely; any error leaves the caller's fallback
// value in place.
func (p *Pipeline) runStage(
	ctx context.Context,
	logger *slog.Logger,
	stage domain.PipelineStage,
	timeout time.Duration,
	available bool,
	fn func(context.Context) error,
) domain.StageTrace {
	trace := domain.StageTrace{Stage: stage, StartedAt: time.Now().UTC()}

	if !available {
		trace.EndedAt = trace.StartedAt
		trace.FallbackUsed = true
		trace.Detail = "capability unavailable"
		return trace
	}
	if err := ctx.Err(); err != nil {
		trace.EndedAt = trace.StartedAt
		trace.FallbackUsed = true
		trace.Detail = "request canceled"
		return trace
	}

	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := runRecovered(stageCtx, fn)
	trace.EndedAt = time.Now().UTC()
	if err != nil {
		trace.FallbackUsed = true
		trace.Detail = err.Error()
		logger.Warn("pipeline stage degraded",
			"stage", string(stage),
			"duration", trace.EndedAt.Sub(trace.StartedAt),
			"error", err)
		return trace
	}

	trace.Success = true
	return trace
}

func runRecovered(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return fn(ctx)
}

func (p *Pipeline) isGreeting(canonicalText string) bool {
	lowered := strings.ToLower(canonicalText)
	for _, greeting := range p.lexicon.Greetings() {
		if strings.Contains(lowered, greeting) {
			return true
		}
	}
	return false
}

func (p *Pipeline) consultFallback(displayName, originalQuery string) ComposeResult {
	_, generic := p.lexicon.FollowUps()
	return ComposeResult{
		Answer:    fmt.Sprintf(p.lexicon.Messages().Consult, displayNameOrDefault(displayName), originalQuery),
		Source:    domain.SourceNone,
		FollowUps: generic,
	}
}

// publishAudit hands the trace to the audit sink on its own goroutine with
// its own deadline; a slow or dead sink never delays the answer.
func (p *Pipeline) publishAudit(logger *slog.Logger, record domain.PipelineAudit) {
	if !p.caps.HasAudit() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
		defer cancel()
		if err := p.caps.Audit.PublishPipelineAudit(ctx, record); err != nil {
			logger.Warn("pipeline audit publish failed", "error", err)
		}
	}()
}
