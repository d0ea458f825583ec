package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/servvia/health-assistant/internal/config"
	"github.com/servvia/health-assistant/internal/core/ports"
	"github.com/servvia/health-assistant/internal/core/usecase"
	"github.com/servvia/health-assistant/internal/infrastructure/corpus"
	"github.com/servvia/health-assistant/internal/infrastructure/generation/openai"
	"github.com/servvia/health-assistant/internal/infrastructure/knowledge"
	"github.com/servvia/health-assistant/internal/infrastructure/lexicon"
	"github.com/servvia/health-assistant/internal/infrastructure/queue/nats"
	"github.com/servvia/health-assistant/internal/infrastructure/repository/postgres"
	"github.com/servvia/health-assistant/internal/infrastructure/resilience"
	"github.com/servvia/health-assistant/internal/infrastructure/translate"
	"github.com/servvia/health-assistant/internal/observability/logging"
)

// App is the object graph shared by the API and the audit worker. The
// lexicon and the fallback corpus are always present; postgres and the
// audit queue must come up or New fails. Translation, the remote knowledge
// source and the generator are optional capabilities: a blank URL leaves
// them nil and the pipeline degrades around the gap.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Lexicon       *lexicon.Store
	Queue         *nats.Queue
	Answerer      ports.HealthAnswerer
	Profiles      ports.ProfileService
	Substitutes   *usecase.SubstituteCatalog
	AuditRecorder ports.AuditRecorder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lexiconStore, err := lexicon.NewStore(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	corpusIndex, err := corpus.NewIndex(cfg.CorpusPath, cfg.CorpusPDFPath, cfg.CorpusMaxResults)
	if err != nil {
		return nil, fmt.Errorf("load fallback corpus: %w", err)
	}
	logger.Info("fallback corpus loaded", "entries", corpusIndex.Len())

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	profileRepo := postgres.NewProfileRepository(db)
	if err := profileRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	auditRepo := postgres.NewAuditRepository(db)
	substituteRepo := postgres.NewSubstituteRepository(db)

	queue, err := nats.New(cfg.NATSURL, cfg.AuditSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init audit queue: %w", err)
	}

	caps := usecase.Capabilities{
		Profiles: profileRepo,
		Audit:    queue,
	}
	if cfg.TranslateURL != "" {
		caps.Language = translate.New(cfg.TranslateURL, cfg.TranslateAPIKey, translate.Options{
			Timeout:  seconds(cfg.TranslateTimeoutSeconds),
			Executor: resilience.NewExecutor(resilience.SingleAttemptConfig()),
		})
	}
	if cfg.KnowledgeURL != "" {
		caps.Knowledge = knowledge.New(cfg.KnowledgeURL, knowledge.Options{
			Timeout:  seconds(cfg.KnowledgeTimeoutSeconds),
			Executor: resilience.NewExecutor(resilience.RetrievalConfig(cfg.KnowledgeRetryAttempts)),
		})
	}
	if cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "" {
		caps.Generator = openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
			BaseURL:  cfg.OpenAIBaseURL,
			Timeout:  seconds(cfg.GenerationTimeoutSeconds),
			Executor: resilience.NewExecutor(resilience.SingleAttemptConfig()),
		})
	}
	logger.Info("capabilities resolved",
		"language", caps.HasLanguage(),
		"knowledge", caps.HasKnowledge(),
		"generator", caps.HasGenerator(),
	)

	pipeline := usecase.NewPipeline(caps, lexiconStore, corpusIndex, usecase.PipelineConfig{
		CanonicalLanguage: cfg.CanonicalLanguage,
		ConfidenceFloor:   cfg.DetectConfidenceFloor,
		CallerID:          cfg.KnowledgeCallerID,
		RetrieveLimit:     cfg.CorpusMaxResults,
		ContextTopN:       cfg.GenerationContextTopN,
		StageTimeout:      seconds(cfg.StageTimeoutSeconds),
		// Compose waits on the generator, so it gets the generation budget
		// plus room for the fallback path.
		ComposeTimeout: seconds(cfg.GenerationTimeoutSeconds + 5),
	}, logging.Component(logger, "pipeline"))

	return &App{
		Config: cfg,
		Logger: logger,

		Lexicon:       lexiconStore,
		Queue:         queue,
		Answerer:      pipeline,
		Profiles:      usecase.NewProfileManager(profileRepo, logging.Component(logger, "profiles")),
		Substitutes:   usecase.NewSubstituteCatalog(substituteRepo),
		AuditRecorder: usecase.NewPipelineAuditRecorder(auditRepo),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
