package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"cofounder/pkg/logger"
	"cofounder/pkg/metrics"
)

// Completer produces one assistant reply for a prepared message list.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// CompletionService talks to any OpenAI compatible chat completions endpoint.
type CompletionService struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

func NewCompletionService(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *CompletionService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &CompletionService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log.With("service", "Completion", "model", model),
	}
}

// Complete returns the text of the first choice, or "" when the provider sent none.
// Provider failures are wrapped in ErrUpstream and never retried.
func (s *CompletionService) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CompletionLatency.WithLabelValues(s.model, status).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Completion request failed", "error", err, "messages", len(messages))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
