package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/infrastructure/resilience"
)

// Client queries the primary remote content service. The payload shape is
// not guaranteed stable across deployments; anything unrecognized degrades
// to "no usable content" instead of an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

func (c *Client) Search(ctx context.Context, query, callerID string) ([]domain.ContentChunk, error) {
	payload := map[string]any{
		"query":     query,
		"caller_id": callerID,
	}

	var raw json.RawMessage
	call := func(callCtx context.Context) error {
		raw = nil
		return c.postJSON(callCtx, "/search", payload, &raw, "search")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "knowledge.search", call, classifyKnowledgeError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTransportFailure("knowledge.search", err)
	}

	return parseChunks(raw), nil
}

// nestedContentKeys are tried in order when the payload is a single object
// without a recognized chunk array.
var nestedContentKeys = []string{"chunks", "results", "data", "content", "text"}

func parseChunks(raw json.RawMessage) []domain.ContentChunk {
	if len(raw) == 0 {
		return nil
	}

	// Shape 1: structured chunk array, possibly scored.
	var structured []struct {
		Text    string  `json:"text"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && len(structured) > 0 {
		chunks := make([]domain.ContentChunk, 0, len(structured))
		for _, item := range structured {
			text := strings.TrimSpace(item.Text)
			if text == "" {
				text = strings.TrimSpace(item.Content)
			}
			if text == "" {
				continue
			}
			chunks = append(chunks, domain.ContentChunk{
				Text:   text,
				Source: domain.SourcePrimary,
				Score:  clampScore(item.Score),
			})
		}
		if len(chunks) > 0 {
			return chunks
		}
	}

	// Shape 2: bare array of strings.
	var texts []string
	if err := json.Unmarshal(raw, &texts); err == nil && len(texts) > 0 {
		chunks := make([]domain.ContentChunk, 0, len(texts))
		for _, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			chunks = append(chunks, domain.ContentChunk{
				Text:   text,
				Source: domain.SourcePrimary,
				Score:  1,
			})
		}
		if len(chunks) > 0 {
			return chunks
		}
	}

	// Shape 3: single object nesting the content under a known key.
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, key := range nestedContentKeys {
			sub, ok := nested[key]
			if !ok {
				continue
			}
			var text string
			if err := json.Unmarshal(sub, &text); err == nil {
				if text = strings.TrimSpace(text); text != "" {
					return []domain.ContentChunk{{
						Text:   text,
						Source: domain.SourcePrimary,
						Score:  1,
					}}
				}
				continue
			}
			if chunks := parseChunks(sub); len(chunks) > 0 {
				return chunks
			}
		}
	}

	return nil
}

func clampScore(score float64) float64 {
	switch {
	case score <= 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
