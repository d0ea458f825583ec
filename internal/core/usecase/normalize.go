package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

// NormalizedQuery carries the canonical-language query text and the language
// the query arrived in.
type NormalizedQuery struct {
	CanonicalText string
	Language      domain.DetectedLanguage
}

// Normalizer brings queries into the canonical working language and answers
// back out of it. The phrase dictionary is consulted before the remote
// service; detection below the confidence floor is treated as already
// canonical rather than risking a confident mistranslation.
type Normalizer struct {
	language          ports.LanguageService
	lexicon           ports.Lexicon
	canonicalLanguage string
	confidenceFloor   float64
}

func NewNormalizer(
	language ports.LanguageService,
	lexicon ports.Lexicon,
	canonicalLanguage string,
	confidenceFloor float64,
) *Normalizer {
	return &Normalizer{
		language:          language,
		lexicon:           lexicon,
		canonicalLanguage: canonicalLanguage,
		confidenceFloor:   confidenceFloor,
	}
}

func (n *Normalizer) Normalize(ctx context.Context, text string) (NormalizedQuery, error) {
	trimmed := strings.TrimSpace(text)

	if entry, ok := n.lexicon.Phrases()[strings.ToLower(trimmed)]; ok {
		return NormalizedQuery{
			CanonicalText: entry.Canonical,
			Language:      domain.DetectedLanguage{Code: entry.Language, Confidence: 1},
		}, nil
	}

	detected, err := n.language.Detect(ctx, trimmed)
	if err != nil {
		return NormalizedQuery{}, fmt.Errorf("detect language: %w", err)
	}

	if detected.Code == "" || strings.EqualFold(detected.Code, n.canonicalLanguage) {
		return NormalizedQuery{
			CanonicalText: trimmed,
			Language:      domain.DetectedLanguage{Code: n.canonicalLanguage, Confidence: detected.Confidence},
		}, nil
	}

	if detected.Confidence < n.confidenceFloor {
		return NormalizedQuery{
			CanonicalText: trimmed,
			Language:      domain.DetectedLanguage{Code: n.canonicalLanguage, Confidence: detected.Confidence},
		}, nil
	}

	translated, err := n.language.Translate(ctx, trimmed, n.canonicalLanguage)
	if err != nil {
		return NormalizedQuery{}, fmt.Errorf("translate query: %w", err)
	}

	return NormalizedQuery{CanonicalText: translated, Language: detected}, nil
}

// Localize translates canonical-language text into the target language.
// Identity for the canonical language itself, with no network call.
func (n *Normalizer) Localize(ctx context.Context, text, languageCode string) (string, error) {
	if languageCode == "" || strings.EqualFold(languageCode, n.canonicalLanguage) {
		return text, nil
	}

	translated, err := n.language.Translate(ctx, text, languageCode)
	if err != nil {
		return "", fmt.Errorf("translate answer: %w", err)
	}
	return translated, nil
}
