package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/infrastructure/resilience"
)

// Client talks to a LibreTranslate-compatible language service. Every
// returned error carries domain.ErrTranslationUnavailable; the pipeline
// treats any of them as "proceed without this stage".
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL, apiKey string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

type detectCandidate struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Detect(ctx context.Context, text string) (domain.DetectedLanguage, error) {
	payload := map[string]any{"q": text}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}

	var candidates []detectCandidate
	call := func(callCtx context.Context) error {
		candidates = candidates[:0]
		return c.postJSON(callCtx, "/detect", payload, &candidates, "detect")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "translate.detect", call, classifyTranslateError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.DetectedLanguage{}, wrapUnavailable("translate.detect", err)
	}
	if len(candidates) == 0 {
		return domain.DetectedLanguage{}, domain.WrapError(domain.ErrTranslationUnavailable, "translate.detect", fmt.Errorf("empty detection result"))
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.Confidence > best.Confidence {
			best = cand
		}
	}

	confidence := best.Confidence
	if confidence > 1 {
		// LibreTranslate reports confidence as a percentage.
		confidence /= 100
	}
	return domain.DetectedLanguage{
		Code:       normalizeLanguageCode(best.Language),
		Confidence: confidence,
	}, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	payload := map[string]any{
		"q":      text,
		"source": "auto",
		"target": normalizeLanguageCode(targetLanguage),
		"format": "text",
	}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}

	var response struct {
		TranslatedText string `json:"translatedText"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/translate", payload, &response, "translate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "translate.translate", call, classifyTranslateError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapUnavailable("translate.translate", err)
	}

	out := strings.TrimSpace(response.TranslatedText)
	if out == "" {
		return "", domain.WrapError(domain.ErrTranslationUnavailable, "translate.translate", fmt.Errorf("empty translation result"))
	}
	return out, nil
}

// normalizeLanguageCode lowers the code and strips a regional suffix, so
// "pt-BR" and "pt_BR" both compare equal to the canonical "pt".
func normalizeLanguageCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
