package providers

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/omni-glass/host/internal/llm"
)

// OpenAIProvider implements llm.Provider against OpenAI's chat completions
// streaming API.
type OpenAIProvider struct {
	llm.BaseProvider

	client       *openai.Client
	defaultModel string
}

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	APIKey       string
	DefaultModel string
}

// NewOpenAIProvider builds an OpenAIProvider. APIKey is required.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o"
	}
	return &OpenAIProvider{
		BaseProvider: llm.NewBaseProvider("openai", 3, defaultRetryDelay),
		client:       openai.NewClient(cfg.APIKey),
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Label implements llm.Provider.
func (p *OpenAIProvider) Label() string { return "openai" }

// IsRemote implements llm.Provider. OpenAI is always a hosted API call.
func (p *OpenAIProvider) IsRemote() bool { return true }

// StreamClassify implements llm.Provider.
func (p *OpenAIProvider) StreamClassify(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

// StreamExecute implements llm.Provider.
func (p *OpenAIProvider) StreamExecute(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

func (p *OpenAIProvider) stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserMessage})

	chatReq := openai.ChatCompletionRequest{
		Model:    p.defaultModel,
		Messages: messages,
		Stream:   true,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	out := make(chan llm.Chunk)

	go func() {
		defer close(out)

		var stream *openai.ChatCompletionStream
		err := p.Retry(ctx, isRetryableOpenAI, func() error {
			s, err := p.client.CreateChatCompletionStream(ctx, chatReq)
			if err != nil {
				return err
			}
			stream = s
			return nil
		})
		if err != nil {
			out <- llm.Chunk{Err: fmt.Errorf("openai: %w", err), Final: true}
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if err != nil {
				if err == io.EOF {
					out <- llm.Chunk{Final: true}
					return
				}
				out <- llm.Chunk{Err: fmt.Errorf("openai: %w", err), Final: true}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if text := resp.Choices[0].Delta.Content; text != "" {
				out <- llm.Chunk{Text: text}
			}
		}
	}()

	return out, nil
}

func isRetryableOpenAI(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "429", "500", "502", "503", "504", "timeout", "connection reset", "connection refused"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
