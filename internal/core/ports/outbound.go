package ports

import (
	"context"

	"github.com/servvia/health-assistant/internal/core/domain"
)

// LanguageService detects query language and translates between the user's
// language and the canonical one. Any error is equivalent to "service
// unavailable"; callers bound every call with a timeout.
type LanguageService interface {
	Detect(ctx context.Context, text string) (domain.DetectedLanguage, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// KnowledgeSource is the primary remote content source. The payload shape
// is not guaranteed stable; implementations return only the chunks they
// could parse.
type KnowledgeSource interface {
	Search(ctx context.Context, query, callerID string) ([]domain.ContentChunk, error)
}

// FallbackCorpus is the pre-indexed local knowledge base, loaded read-only
// at startup. Search is pure in-process matching and never fails.
type FallbackCorpus interface {
	Search(query string, limit int) []domain.ContentChunk
}

// ProfileStore persists medical profiles and their audit trail. GetProfile
// wraps domain.ErrProfileNotFound when no profile exists for the account.
type ProfileStore interface {
	GetProfile(ctx context.Context, accountID string) (*domain.MedicalProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.MedicalProfile) (created bool, err error)
	SoftDeleteProfile(ctx context.Context, accountID string) error
	AppendProfileAudit(ctx context.Context, entry domain.ProfileAuditEntry) error
}

// SubstituteStore looks up and records safe ingredient alternatives.
type SubstituteStore interface {
	ListSubstitutes(ctx context.Context, ingredient, condition string) ([]domain.IngredientSubstitute, error)
	CreateSubstitute(ctx context.Context, sub *domain.IngredientSubstitute) error
}

// AnswerGenerator drives the generation step of the composer.
type AnswerGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// AuditSink carries pipeline audit records. Publishing is fire-and-forget
// from the orchestrator's point of view; the worker consumes.
type AuditSink interface {
	PublishPipelineAudit(ctx context.Context, record domain.PipelineAudit) error
	SubscribePipelineAudit(ctx context.Context, handler func(context.Context, domain.PipelineAudit) error) error
}

// AuditStore persists consumed pipeline audit records.
type AuditStore interface {
	SavePipelineAudit(ctx context.Context, record domain.PipelineAudit) error
}

// Lexicon provides the hot-reloadable dictionaries the pipeline consults:
// contraindication rules, the fast-path phrase dictionary, condition
// keywords, greeting phrases, follow-up sets and response copy. Getters
// return immutable snapshots; Reload swaps them atomically.
type Lexicon interface {
	Rules() domain.ContraindicationRuleSet
	Phrases() map[string]domain.PhraseEntry
	ConditionKeywords() []string
	Greetings() []string
	FollowUps() (content []string, generic []string)
	Messages() domain.AssistantMessages
	Reload() error
}
