package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestComposerNoChunksRecommendsConsultation(t *testing.T) {
	composer := NewComposer(nil, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "rare ailment",
		DisplayName:   "Sam",
		Source:        domain.SourceNone,
	})
	if !strings.Contains(out.Answer, "Hello Sam!") {
		t.Fatalf("expected greeting with display name, got %q", out.Answer)
	}
	if !strings.Contains(out.Answer, "'rare ailment'") {
		t.Fatalf("expected the original query echoed, got %q", out.Answer)
	}
	if !strings.Contains(out.Answer, "consult a healthcare professional") {
		t.Fatalf("expected consultation recommendation, got %q", out.Answer)
	}
	if out.Source != domain.SourceNone || out.Generated {
		t.Fatalf("unexpected result metadata %+v", out)
	}
	if len(out.FollowUps) != 3 {
		t.Fatalf("expected generic follow-ups, got %v", out.FollowUps)
	}
}

func TestComposerAllFilteredUsesSafetyMessage(t *testing.T) {
	composer := NewComposer(nil, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "cough syrup",
		DisplayName:   "Maya",
		Source:        domain.SourcePrimary,
		Filter: domain.FilterResult{
			AllFiltered: true,
			Disclaimer:  "Medical Note: Considering your diabetes, be careful.",
		},
	})
	if !strings.Contains(out.Answer, "safe for your specific conditions") {
		t.Fatalf("expected the all-filtered message, got %q", out.Answer)
	}
	if !strings.HasPrefix(out.Answer, "Medical Note:") {
		t.Fatalf("expected disclaimer prepended, got %q", out.Answer)
	}
	if out.Source != domain.SourceNone {
		t.Fatalf("no surviving content must report source none, got %q", out.Source)
	}
}

func TestComposerDefaultsDisplayName(t *testing.T) {
	composer := NewComposer(nil, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{OriginalQuery: "anything"})
	if !strings.Contains(out.Answer, "Hello there!") {
		t.Fatalf("expected default display name, got %q", out.Answer)
	}
}

func TestComposerGeneratesFromTopChunks(t *testing.T) {
	generator := &generatorFake{answer: "Stay hydrated and rest."}
	composer := NewComposer(generator, newLexiconFake(), 2, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery:  "fiebre",
		CanonicalQuery: "fever",
		DisplayName:    "Ana",
		Source:         domain.SourcePrimary,
		Filter: domain.FilterResult{SafeChunks: []domain.ContentChunk{
			{Text: "Drink fluids.", Score: 0.9},
			{Text: "Rest in a cool room.", Score: 0.8},
			{Text: "Should not reach the generator.", Score: 0.7},
		}},
	})
	if !out.Generated {
		t.Fatalf("expected generated answer")
	}
	if out.Answer != "Stay hydrated and rest." {
		t.Fatalf("unexpected answer %q", out.Answer)
	}
	if out.Source != domain.SourcePrimary {
		t.Fatalf("expected retrieval source preserved, got %q", out.Source)
	}
	if generator.req.Query != "fiebre" || generator.req.RephrasedQuery != "fever" || generator.req.DisplayName != "Ana" {
		t.Fatalf("unexpected generation request %+v", generator.req)
	}
	if generator.req.Context != "Drink fluids.\n\nRest in a cool room." {
		t.Fatalf("expected top-2 context, got %q", generator.req.Context)
	}
	if len(out.FollowUps) != 4 {
		t.Fatalf("expected content follow-ups, got %v", out.FollowUps)
	}
}

func TestComposerStripsListMarkersFromGeneratedText(t *testing.T) {
	generator := &generatorFake{answer: "• Drink fluids\n● Rest well\n1. Avoid caffeine\n23. See a doctor if it persists"}
	composer := NewComposer(generator, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "fever",
		Source:        domain.SourcePrimary,
		Filter:        domain.FilterResult{SafeChunks: []domain.ContentChunk{{Text: "chunk"}}},
	})
	want := "Drink fluids\nRest well\nAvoid caffeine\nSee a doctor if it persists"
	if out.Answer != want {
		t.Fatalf("answer = %q, want %q", out.Answer, want)
	}
}

func TestComposerQuotesTopChunkWhenGenerationFails(t *testing.T) {
	generator := &generatorFake{err: errors.New("model overloaded")}
	composer := NewComposer(generator, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "sore throat",
		DisplayName:   "Alice",
		Source:        domain.SourceFallback,
		Filter:        domain.FilterResult{SafeChunks: []domain.ContentChunk{{Text: "Gargle with warm salt water."}}},
	})
	if out.Generated {
		t.Fatalf("expected quote fallback, not a generated answer")
	}
	want := "Hello Alice! Based on available information:\n\nGargle with warm salt water...."
	if out.Answer != want {
		t.Fatalf("answer = %q, want %q", out.Answer, want)
	}
	if out.Source != domain.SourceFallback {
		t.Fatalf("expected retrieval source preserved, got %q", out.Source)
	}
	if len(out.FollowUps) != 4 {
		t.Fatalf("quote fallback still has content follow-ups, got %v", out.FollowUps)
	}
}

func TestComposerQuotesTopChunkWhenGenerationEmpty(t *testing.T) {
	generator := &generatorFake{answer: "   \n  "}
	composer := NewComposer(generator, newLexiconFake(), 5, testLogger())

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "sore throat",
		Source:        domain.SourcePrimary,
		Filter:        domain.FilterResult{SafeChunks: []domain.ContentChunk{{Text: "Gargle with warm salt water."}}},
	})
	if out.Generated {
		t.Fatalf("expected quote fallback for empty generation")
	}
	if !strings.Contains(out.Answer, "Gargle with warm salt water.") {
		t.Fatalf("expected top chunk quoted, got %q", out.Answer)
	}
}

func TestComposerQuoteTruncatesLongChunks(t *testing.T) {
	composer := NewComposer(nil, newLexiconFake(), 5, testLogger())
	long := strings.Repeat("a", 620)

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "anything",
		Source:        domain.SourceFallback,
		Filter:        domain.FilterResult{SafeChunks: []domain.ContentChunk{{Text: long}}},
	})
	if !strings.HasSuffix(out.Answer, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", out.Answer)
	}
	if strings.Contains(out.Answer, strings.Repeat("a", 501)) {
		t.Fatalf("expected chunk truncated to 500 runes")
	}
	if !strings.Contains(out.Answer, strings.Repeat("a", 500)) {
		t.Fatalf("expected 500 runes of the chunk kept")
	}
}

func TestComposerPrependsDisclaimerToContentAnswers(t *testing.T) {
	composer := NewComposer(nil, newLexiconFake(), 5, testLogger())
	disclaimer := "Medical Note: Considering your diabetes, be careful."

	out := composer.Compose(context.Background(), ComposeInput{
		OriginalQuery: "cough",
		Source:        domain.SourcePrimary,
		Filter: domain.FilterResult{
			SafeChunks: []domain.ContentChunk{{Text: "Drink warm water."}},
			Disclaimer: disclaimer,
		},
	})
	if !strings.HasPrefix(out.Answer, disclaimer+"\n\n") {
		t.Fatalf("expected disclaimer prepended, got %q", out.Answer)
	}
}
