// Package providers implements the llm.Provider contract for concrete LLM
// backends: Anthropic's Claude, OpenAI's GPT family, and a local/offline
// provider used for development and testing.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/omni-glass/host/internal/llm"
)

// AnthropicProvider implements llm.Provider against Anthropic's Messages
// API, streaming text deltas as they arrive.
type AnthropicProvider struct {
	llm.BaseProvider

	client       anthropic.Client
	defaultModel string
}

// AnthropicConfig configures an AnthropicProvider.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// NewAnthropicProvider builds an AnthropicProvider. APIKey is required.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		BaseProvider: llm.NewBaseProvider("anthropic", 3, defaultRetryDelay),
		client:       anthropic.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Label implements llm.Provider.
func (p *AnthropicProvider) Label() string { return "anthropic" }

// IsRemote implements llm.Provider. Anthropic is always a hosted API call.
func (p *AnthropicProvider) IsRemote() bool { return true }

// StreamClassify implements llm.Provider.
func (p *AnthropicProvider) StreamClassify(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

// StreamExecute implements llm.Provider.
func (p *AnthropicProvider) StreamExecute(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

func (p *AnthropicProvider) stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	out := make(chan llm.Chunk)

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.defaultModel),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}

	go func() {
		defer close(out)

		sent := false
		err := p.Retry(ctx, func(err error) bool {
			return !sent && isRetryableAnthropic(err)
		}, func() error {
			s := p.client.Messages.NewStreaming(ctx, params)
			for s.Next() {
				event := s.Current()
				if event.Type != "content_block_delta" {
					continue
				}
				delta := event.AsContentBlockDelta().Delta
				if delta.Type == "text_delta" && delta.Text != "" {
					out <- llm.Chunk{Text: delta.Text}
					sent = true
				}
			}
			return s.Err()
		})
		if err != nil {
			out <- llm.Chunk{Err: fmt.Errorf("anthropic: %w", err), Final: true}
			return
		}
		out <- llm.Chunk{Final: true}
	}()

	return out, nil
}

func isRetryableAnthropic(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate_limit", "429", "too many requests", "500", "502", "503", "504", "timeout", "deadline exceeded", "connection reset", "connection refused"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
