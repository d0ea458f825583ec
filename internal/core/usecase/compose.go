package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

const (
	defaultContextTopN = 5
	defaultDisplayName = "there"
	quoteMaxRunes      = 500
)

var (
	bulletPrefixes  = regexp.MustCompile(`(?m)^[•●○]\s*`)
	numericPrefixes = regexp.MustCompile(`(?m)^\d+\.\s*`)
)

// ComposeInput is everything the composer needs from the stages before it.
// OriginalQuery keeps the user's own phrasing for tone; CanonicalQuery is
// what retrieval actually ran on.
type ComposeInput struct {
	OriginalQuery  string
	CanonicalQuery string
	DisplayName    string
	Source         string
	Filter         domain.FilterResult
}

// ComposeResult is a canonical-language answer plus its provenance.
type ComposeResult struct {
	Answer    string
	Source    string
	Generated bool
	FollowUps []string
}

// Composer turns safe chunks into a final canonical-language answer. The
// generation service is optional and allowed to fail: the top chunk is
// quoted directly rather than surfacing an error to the user.
type Composer struct {
	generator ports.AnswerGenerator
	lexicon   ports.Lexicon
	topN      int
	logger    *slog.Logger
}

func NewComposer(generator ports.AnswerGenerator, lexicon ports.Lexicon, topN int, logger *slog.Logger) *Composer {
	if topN <= 0 {
		topN = defaultContextTopN
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		generator: generator,
		lexicon:   lexicon,
		topN:      topN,
		logger:    logger,
	}
}

func (c *Composer) Compose(ctx context.Context, in ComposeInput) ComposeResult {
	messages := c.lexicon.Messages()
	contentFollowUps, genericFollowUps := c.lexicon.FollowUps()
	name := displayNameOrDefault(in.DisplayName)

	if len(in.Filter.SafeChunks) == 0 {
		template := messages.Consult
		if in.Filter.AllFiltered {
			template = messages.AllFiltered
		}
		answer := fmt.Sprintf(template, name, in.OriginalQuery)
		return ComposeResult{
			Answer:    prependDisclaimer(in.Filter.Disclaimer, answer),
			Source:    domain.SourceNone,
			FollowUps: genericFollowUps,
		}
	}

	answer, generated := c.generate(ctx, in, name)
	if !generated {
		answer = quoteTopChunk(messages.QuotePreamble, name, in.Filter.SafeChunks[0].Text)
	}

	return ComposeResult{
		Answer:    prependDisclaimer(in.Filter.Disclaimer, answer),
		Source:    in.Source,
		Generated: generated,
		FollowUps: contentFollowUps,
	}
}

func (c *Composer) generate(ctx context.Context, in ComposeInput, name string) (string, bool) {
	if c.generator == nil {
		return "", false
	}

	top := in.Filter.SafeChunks
	if len(top) > c.topN {
		top = top[:c.topN]
	}
	texts := make([]string, len(top))
	for i, chunk := range top {
		texts[i] = chunk.Text
	}

	answer, err := c.generator.Generate(ctx, domain.GenerationRequest{
		Query:          in.OriginalQuery,
		RephrasedQuery: in.CanonicalQuery,
		DisplayName:    in.DisplayName,
		Context:        strings.Join(texts, "\n\n"),
	})
	if err != nil {
		c.logger.Warn("answer generation failed, quoting top chunk", "error", err)
		return "", false
	}

	answer = strings.TrimSpace(stripListMarkers(answer))
	if answer == "" {
		c.logger.Warn("answer generation returned empty text, quoting top chunk")
		return "", false
	}
	return answer, true
}

// stripListMarkers removes leading bullet and numbered-list prefixes per
// line; presentation formatting belongs to the caller, not the answer text.
func stripListMarkers(text string) string {
	text = bulletPrefixes.ReplaceAllString(text, "")
	return numericPrefixes.ReplaceAllString(text, "")
}

func quoteTopChunk(preamble, name, chunkText string) string {
	runes := []rune(chunkText)
	if len(runes) > quoteMaxRunes {
		runes = runes[:quoteMaxRunes]
	}
	return fmt.Sprintf(preamble, name) + "\n\n" + string(runes) + "..."
}

func prependDisclaimer(disclaimer, answer string) string {
	if disclaimer == "" {
		return answer
	}
	return disclaimer + "\n\n" + answer
}

func displayNameOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultDisplayName
	}
	return name
}
