package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
	"github.com/servvia/health-assistant/internal/core/usecase"
	"github.com/servvia/health-assistant/internal/observability/metrics"
)

// RouterConfig carries the traffic-control tunables. Zero values disable
// the corresponding middleware.
type RouterConfig struct {
	Service          string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	answerer    ports.HealthAnswerer
	profiles    ports.ProfileService
	substitutes *usecase.SubstituteCatalog
	lexicon     ports.Lexicon
	metrics     *metrics.HTTPServerMetrics
	logger      *slog.Logger
	cfg         RouterConfig
}

func NewRouter(
	answerer ports.HealthAnswerer,
	profiles ports.ProfileService,
	substitutes *usecase.SubstituteCatalog,
	lexicon ports.Lexicon,
	httpMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	cfg RouterConfig,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Service == "" {
		cfg.Service = "health-assistant-api"
	}
	return &Router{
		answerer:    answerer,
		profiles:    profiles,
		substitutes: substitutes,
		lexicon:     lexicon,
		metrics:     httpMetrics,
		logger:      logger,
		cfg:         cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/answers", rt.answerQuery)
	mux.HandleFunc("/v1/profiles/", rt.handleProfile)
	mux.HandleFunc("/v1/substitutes", rt.handleSubstitutes)
	mux.HandleFunc("/v1/lexicon/reload", rt.reloadLexicon)

	handler := backpressureMiddleware(mux, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = rt.metrics.Middleware(rt.cfg.Service, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) answerQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query        string `json:"query"`
		AccountID    string `json:"account_id"`
		DisplayName  string `json:"display_name"`
		LanguageHint string `json:"language_hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.answerer.Answer(r.Context(), domain.Query{
		Text:         req.Query,
		AccountID:    req.AccountID,
		DisplayName:  req.DisplayName,
		LanguageHint: req.LanguageHint,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	rt.metrics.RecordAnswerObservation(
		rt.cfg.Service,
		result.Source,
		result.Generated,
		result.ContentFiltered,
		result.Greeting,
		time.Since(start),
	)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimPrefix(r.URL.Path, "/v1/profiles/")
	if accountID == "" || strings.Contains(accountID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "account id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := rt.profiles.Get(r.Context(), accountID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case http.MethodPut:
		var profile domain.MedicalProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		profile.AccountID = accountID

		saved, err := rt.profiles.Upsert(r.Context(), &profile, actor(r, accountID), remoteIP(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)

	case http.MethodDelete:
		if err := rt.profiles.Delete(r.Context(), accountID, actor(r, accountID), remoteIP(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) handleSubstitutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		subs, err := rt.substitutes.List(r.Context(), query.Get("ingredient"), query.Get("condition"))
		if err != nil {
			writeError(w, err)
			return
		}
		if subs == nil {
			subs = []domain.IngredientSubstitute{}
		}
		writeJSON(w, http.StatusOK, subs)

	case http.MethodPost:
		var sub domain.IngredientSubstitute
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		created, err := rt.substitutes.Create(r.Context(), &sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) reloadLexicon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	err := rt.lexicon.Reload()
	rt.metrics.RecordLexiconReload(rt.cfg.Service, err)
	if err != nil {
		rt.logger.Error("lexicon reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// actor names who performed a profile mutation for the audit trail: the
// X-Actor header when a staff tool sets it, else the account itself.
func actor(r *http.Request, accountID string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Actor")); v != "" {
		return v
	}
	return accountID
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
