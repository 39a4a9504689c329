package openai

import (
	"context"
	"errors"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// Chat is a chat completion provider using the OpenAI-compatible API.
// It implements domain.ChatModel and domain.StreamingChatModel.
type Chat struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewChat creates an OpenAI-compatible chat completion provider.
func NewChat(cfg *ChatConfig) *Chat {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Chat{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Complete implements domain.ChatModel.
func (c *Chat) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    buildMessages(systemPrompt, userPrompt),
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "sync", "error").Inc()
		return "", parseAPIError("chat", err, domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, "sync", "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(c.model, "sync").Observe(time.Since(start).Seconds())

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream implements domain.StreamingChatModel.
func (c *Chat) Stream(ctx context.Context, systemPrompt, userPrompt string) (domain.TokenStream, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    buildMessages(systemPrompt, userPrompt),
		Stream:      true,
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(c.model, "stream", "error").Inc()
		return nil, parseAPIError("chat", err, domain.ErrChatProviderError)
	}

	metrics.ChatRequestsTotal.WithLabelValues(c.model, "stream", "success").Inc()
	return &tokenStream{stream: stream, model: c.model, started: time.Now()}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Chat) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return parseAPIError("chat", err, domain.ErrChatProviderError)
	}
	return nil
}

func buildMessages(systemPrompt, userPrompt string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})
	return msgs
}

// tokenStream adapts *openai.ChatCompletionStream to domain.TokenStream.
// Empty deltas (role-only or finish chunks) are skipped so consumers only
// see actual text.
type tokenStream struct {
	stream  *openai.ChatCompletionStream
	model   string
	started time.Time
	closed  bool
}

func (t *tokenStream) Recv() (string, error) {
	for {
		resp, err := t.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				metrics.ChatRequestDuration.WithLabelValues(t.model, "stream").
					Observe(time.Since(t.started).Seconds())
				return "", io.EOF
			}
			return "", parseAPIError("chat stream", err, domain.ErrChatProviderError)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (t *tokenStream) Close() {
	if t.closed {
		return
	}
	t.closed = true
	_ = t.stream.Close()
}
