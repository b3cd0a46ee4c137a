// Package tutor wraps a chat-completion API to answer study-planning
// questions with the student's upcoming calendar as context. Completion
// semantics are opaque; this is only the request/response contract.
package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/starford/ansuz/internal/models"
)

// Planner produces study-plan replies. A Planner built without an API
// key is disabled and rejects requests.
type Planner struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// New creates a Planner. With an empty apiKey the planner is disabled.
func New(apiKey, model string, maxTokens int, temperature float64, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Planner{
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		logger:      logger,
	}
	if apiKey != "" {
		p.client = openai.NewClient(apiKey)
	}
	return p
}

// Enabled reports whether the planner has a configured API client.
func (p *Planner) Enabled() bool {
	return p != nil && p.client != nil
}

// Plan sends the student's message plus a compact summary of upcoming
// events and returns the assistant reply.
func (p *Planner) Plan(ctx context.Context, message string, upcoming []models.Event) (string, error) {
	if !p.Enabled() {
		return "", fmt.Errorf("tutor: not configured")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(message, upcoming),
			},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		p.logger.Error("tutor: completion failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("tutor: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("tutor: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const systemPrompt = "You are a study planner for an IB Diploma student. " +
	"Give concrete, realistic advice in a few short paragraphs. When the " +
	"student's calendar is provided, anchor the plan to those dates."

// buildPrompt renders the user message with the upcoming schedule.
func buildPrompt(message string, upcoming []models.Event) string {
	var b strings.Builder
	b.WriteString(message)
	if len(upcoming) > 0 {
		b.WriteString("\n\nUpcoming schedule:\n")
		for _, e := range upcoming {
			fmt.Fprintf(&b, "- %s %s (%s): %s\n", e.Date, e.Type, e.Subject, e.Title)
		}
	}
	return b.String()
}
