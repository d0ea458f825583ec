package openai

import (
	"fmt"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
)

const systemPrompt = `You are a careful health information assistant.
Answer only from the provided context. Keep the answer short, warm and
practical. Plain sentences only: no bullet points, no numbered lists, no
markdown. Never invent remedies that are not in the context, and never
present yourself as a doctor.`

func buildUserPrompt(req domain.GenerationRequest) string {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User name: %s\n", name)
	fmt.Fprintf(&b, "Question: %s\n", req.Query)
	if req.RephrasedQuery != "" && req.RephrasedQuery != req.Query {
		fmt.Fprintf(&b, "Interpreted as: %s\n", req.RephrasedQuery)
	}
	b.WriteString("\nContext:\n")
	b.WriteString(req.Context)
	b.WriteString("\n\nGreet the user by name once, then answer the question from the context above.")
	return b.String()
}
