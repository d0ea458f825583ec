package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/infrastructure/resilience"
)

// Generator drives the composer's generation step through an
// OpenAI-compatible chat completion endpoint.
type Generator struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	executor *resilience.Executor
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Executor *resilience.Executor
}

func NewGenerator(apiKey, model string, options Options) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if options.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(options.BaseURL, "/")
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Generator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		timeout:  timeout,
		executor: options.Executor,
	}
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		Temperature: 0.4,
		MaxTokens:   400,
	}

	var answer string
	call := func(callCtx context.Context) error {
		resp, err := g.client.CreateChatCompletion(callCtx, chatReq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion choices")
		}
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if g.executor != nil {
		err = g.executor.Execute(ctx, "generation.chat", call, classifyGenerationError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapGenerationUnavailable("generation.chat", err)
	}
	if answer == "" {
		return "", domain.WrapError(domain.ErrGenerationUnavailable, "generation.chat", fmt.Errorf("empty completion text"))
	}
	return answer, nil
}
