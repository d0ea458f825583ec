package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

const defaultRetrieveLimit = 5

// Retriever walks the content source chain: the remote knowledge service
// first, the local corpus only when the primary yields nothing. It never
// returns an error; a dead primary source is a log line and a fallback, and
// an empty result is a valid outcome.
type Retriever struct {
	knowledge ports.KnowledgeSource
	corpus    ports.FallbackCorpus
	lexicon   ports.Lexicon
	callerID  string
	limit     int
	logger    *slog.Logger
}

func NewRetriever(
	knowledge ports.KnowledgeSource,
	corpus ports.FallbackCorpus,
	lexicon ports.Lexicon,
	callerID string,
	limit int,
	logger *slog.Logger,
) *Retriever {
	if limit <= 0 {
		limit = defaultRetrieveLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		knowledge: knowledge,
		corpus:    corpus,
		lexicon:   lexicon,
		callerID:  callerID,
		limit:     limit,
		logger:    logger,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, canonicalQuery string) domain.RetrievedContent {
	searchQuery := r.enhanceQuery(canonicalQuery)

	if r.knowledge != nil {
		chunks, err := r.knowledge.Search(ctx, searchQuery, r.callerID)
		if err != nil {
			r.logger.Warn("primary knowledge source failed, trying fallback corpus", "error", err)
		}
		if len(chunks) > 0 {
			return domain.RetrievedContent{
				Chunks: labelChunks(chunks, domain.SourcePrimary),
				Source: domain.SourcePrimary,
			}
		}
	}

	if chunks := r.corpus.Search(searchQuery, r.limit); len(chunks) > 0 {
		return domain.RetrievedContent{
			Chunks: labelChunks(chunks, domain.SourceFallback),
			Source: domain.SourceFallback,
		}
	}

	return domain.RetrievedContent{Source: domain.SourceNone}
}

// enhanceQuery biases retrieval toward actionable content: a query naming a
// known condition gets "remedy treatment" appended, unless the user already
// asked in those terms.
func (r *Retriever) enhanceQuery(query string) string {
	lowered := strings.ToLower(query)
	if strings.Contains(lowered, "remedy") || strings.Contains(lowered, "treatment") {
		return query
	}
	for _, keyword := range r.lexicon.ConditionKeywords() {
		if strings.Contains(lowered, keyword) {
			return query + " remedy treatment"
		}
	}
	return query
}

func labelChunks(chunks []domain.ContentChunk, source string) []domain.ContentChunk {
	for i := range chunks {
		chunks[i].Source = source
	}
	return chunks
}
