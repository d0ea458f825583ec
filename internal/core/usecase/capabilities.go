package usecase

import "github.com/servvia/health-assistant/internal/core/ports"

// Capabilities names the optional collaborators of the answer pipeline,
// resolved once at startup. A nil port means the capability is off for the
// process lifetime; the orchestrator substitutes the stage fallback instead
// of probing availability at request time.
type Capabilities struct {
	Language  ports.LanguageService
	Knowledge ports.KnowledgeSource
	Profiles  ports.ProfileStore
	Generator ports.AnswerGenerator
	Audit     ports.AuditSink
}

func (c Capabilities) HasLanguage() bool { return c.Language != nil }

func (c Capabilities) HasKnowledge() bool { return c.Knowledge != nil }

func (c Capabilities) HasProfiles() bool { return c.Profiles != nil }

func (c Capabilities) HasGenerator() bool { return c.Generator != nil }

func (c Capabilities) HasAudit() bool { return c.Audit != nil }
