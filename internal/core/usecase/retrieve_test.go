package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestRetrieverPrefersPrimarySource(t *testing.T) {
	knowledge := &knowledgeFake{chunks: []domain.ContentChunk{{Text: "Gargle with salt water.", Score: 0.9}}}
	corpus := &corpusFake{chunks: []domain.ContentChunk{{Text: "corpus hit"}}}
	retriever := NewRetriever(knowledge, corpus, newLexiconFake(), "health-assistant", 5, testLogger())

	out := retriever.Retrieve(context.Background(), "sore throat")
	if out.Source != domain.SourcePrimary {
		t.Fatalf("expected primary source, got %q", out.Source)
	}
	if len(out.Chunks) != 1 || out.Chunks[0].Source != domain.SourcePrimary {
		t.Fatalf("expected primary-labeled chunks, got %+v", out.Chunks)
	}
	if corpus.calls != 0 {
		t.Fatalf("corpus must not be searched when primary has results, got %d calls", corpus.calls)
	}
}

func TestRetrieverFallsBackWhenPrimaryEmpty(t *testing.T) {
	knowledge := &knowledgeFake{}
	corpus := &corpusFake{chunks: []domain.ContentChunk{{Text: "Ginger tea soothes nausea.", Score: 1}}}
	retriever := NewRetriever(knowledge, corpus, newLexiconFake(), "health-assistant", 5, testLogger())

	out := retriever.Retrieve(context.Background(), "nausea")
	if out.Source != domain.SourceFallback {
		t.Fatalf("expected fallback source, got %q", out.Source)
	}
	if len(out.Chunks) != 1 || out.Chunks[0].Source != domain.SourceFallback {
		t.Fatalf("expected fallback-labeled chunks, got %+v", out.Chunks)
	}
	if corpus.limit != 5 {
		t.Fatalf("expected corpus search limit 5, got %d", corpus.limit)
	}
}

func TestRetrieverFallsBackWhenPrimaryFails(t *testing.T) {
	knowledge := &knowledgeFake{err: errors.New("upstream 502")}
	corpus := &corpusFake{chunks: []domain.ContentChunk{{Text: "Apply a cold compress.", Score: 1}}}
	retriever := NewRetriever(knowledge, corpus, newLexiconFake(), "health-assistant", 5, testLogger())

	out := retriever.Retrieve(context.Background(), "bruise")
	if out.Source != domain.SourceFallback {
		t.Fatalf("expected fallback source after primary failure, got %q", out.Source)
	}
	if corpus.calls != 1 {
		t.Fatalf("expected one corpus search, got %d", corpus.calls)
	}
}

func TestRetrieverEmptyWhenBothSourcesEmpty(t *testing.T) {
	retriever := NewRetriever(&knowledgeFake{}, &corpusFake{}, newLexiconFake(), "health-assistant", 5, testLogger())

	out := retriever.Retrieve(context.Background(), "unheard-of ailment")
	if out.Source != domain.SourceNone {
		t.Fatalf("expected source none, got %q", out.Source)
	}
	if len(out.Chunks) != 0 {
		t.Fatalf("expected no chunks, got %+v", out.Chunks)
	}
}

func TestRetrieverWorksWithoutPrimarySource(t *testing.T) {
	corpus := &corpusFake{chunks: []domain.ContentChunk{{Text: "Rest the joint.", Score: 1}}}
	retriever := NewRetriever(nil, corpus, newLexiconFake(), "health-assistant", 5, testLogger())

	out := retriever.Retrieve(context.Background(), "sprained ankle")
	if out.Source != domain.SourceFallback {
		t.Fatalf("expected fallback source without primary, got %q", out.Source)
	}
}

func TestRetrieverEnhancesConditionQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"condition keyword", "persistent fever", "persistent fever remedy treatment"},
		{"already asks for remedy", "fever remedy at home", "fever remedy at home"},
		{"already asks for treatment", "best treatment for fever", "best treatment for fever"},
		{"no condition keyword", "balanced diet tips", "balanced diet tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			knowledge := &knowledgeFake{}
			retriever := NewRetriever(knowledge, &corpusFake{}, newLexiconFake(), "health-assistant", 5, testLogger())

			retriever.Retrieve(context.Background(), tt.query)
			if knowledge.query != tt.want {
				t.Fatalf("search query = %q, want %q", knowledge.query, tt.want)
			}
		})
	}
}
