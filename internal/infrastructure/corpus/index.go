package corpus

import (
	"sort"
	"strings"
	"unicode"

	"github.com/servvia/health-assistant/internal/core/domain"
)

const (
	defaultMaxResults = 5
	overlapFloor      = 0.5
	scanMinTokenLen   = 4
)

// Index is the local remedy knowledge base, consulted when the primary
// content service yields nothing. It is built once at startup and shared
// read-only across requests; Search never fails.
type Index struct {
	entries    []entry
	maxResults int
}

type entry struct {
	condition string
	keywords  []string
	text      string
	lowered   string
	tokens    map[string]struct{}
}

func newIndex(entries []entry, maxResults int) *Index {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Index{entries: entries, maxResults: maxResults}
}

func (x *Index) Len() int {
	return len(x.entries)
}

type match struct {
	order int
	score float64
}

// Search runs three strategies in order and stops at the first that yields
// results: condition names and aliases against the query text, then token
// overlap, then a substring scan of the longer query words. Ties keep file
// order, so operators can rank remedies by placement.
func (x *Index) Search(query string, limit int) []domain.ContentChunk {
	if limit <= 0 || limit > x.maxResults {
		limit = x.maxResults
	}

	lowered := strings.ToLower(query)
	tokens := toTokenSet(query)

	matches := x.matchConditions(lowered)
	if len(matches) == 0 {
		matches = x.matchOverlap(tokens)
	}
	if len(matches) == 0 {
		matches = x.matchKeywordScan(tokens)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	chunks := make([]domain.ContentChunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, domain.ContentChunk{
			Text:   x.entries[m.order].text,
			Source: domain.SourceFallback,
			Score:  m.score,
		})
	}
	return chunks
}

func (x *Index) matchConditions(lowered string) []match {
	var out []match
	for i, e := range x.entries {
		if e.condition != "" && strings.Contains(lowered, e.condition) {
			out = append(out, match{order: i, score: 1})
			continue
		}
		for _, kw := range e.keywords {
			if strings.Contains(lowered, kw) {
				out = append(out, match{order: i, score: 0.9})
				break
			}
		}
	}
	return out
}

func (x *Index) matchOverlap(tokens map[string]struct{}) []match {
	var out []match
	for i, e := range x.entries {
		overlap := tokenOverlap(tokens, e.tokens)
		if overlap >= overlapFloor {
			out = append(out, match{order: i, score: overlap})
		}
	}
	return out
}

// matchKeywordScan substring-matches longer query words against entry text,
// which catches word forms tokenization misses ("feverish", "burned").
func (x *Index) matchKeywordScan(tokens map[string]struct{}) []match {
	long := make([]string, 0, len(tokens))
	for token := range tokens {
		if len(token) >= scanMinTokenLen {
			long = append(long, token)
		}
	}
	if len(long) == 0 {
		return nil
	}
	sort.Strings(long)

	var out []match
	for i, e := range x.entries {
		hits := 0
		for _, token := range long {
			if strings.Contains(e.lowered, token) {
				hits++
			}
		}
		if hits > 0 {
			out = append(out, match{order: i, score: float64(hits) / float64(len(long))})
		}
	}
	return out
}

func tokenOverlap(query, text map[string]struct{}) float64 {
	if len(query) == 0 || len(text) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := text[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
