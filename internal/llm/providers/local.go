package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omni-glass/host/internal/llm"
)

// LocalProvider implements llm.Provider against an Ollama-compatible local
// HTTP server. It never leaves the machine, so IsRemote always reports
// false and the safety layer skips redaction for it.
type LocalProvider struct {
	llm.BaseProvider

	client       *http.Client
	baseURL      string
	defaultModel string
}

// LocalConfig configures a LocalProvider.
type LocalConfig struct {
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// NewLocalProvider builds a LocalProvider pointed at an Ollama-compatible
// /api/chat endpoint.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &LocalProvider{
		BaseProvider: llm.NewBaseProvider("local", 1, defaultRetryDelay),
		client:       &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		defaultModel: strings.TrimSpace(cfg.DefaultModel),
	}
}

// Label implements llm.Provider.
func (p *LocalProvider) Label() string { return "local" }

// IsRemote implements llm.Provider. A local provider never leaves the
// machine.
func (p *LocalProvider) IsRemote() bool { return false }

// StreamClassify implements llm.Provider.
func (p *LocalProvider) StreamClassify(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

// StreamExecute implements llm.Provider.
func (p *LocalProvider) StreamExecute(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	return p.stream(ctx, req)
}

type localChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatRequest struct {
	Model    string             `json:"model"`
	Stream   bool               `json:"stream"`
	Messages []localChatMessage `json:"messages"`
	Options  map[string]any     `json:"options,omitempty"`
}

type localChatResponse struct {
	Message *localChatMessage `json:"message"`
	Done    bool              `json:"done"`
	Error   string            `json:"error"`
}

func (p *LocalProvider) stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	model := p.defaultModel
	if model == "" {
		return nil, fmt.Errorf("local: default_model is required")
	}

	messages := make([]localChatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, localChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, localChatMessage{Role: "user", Content: req.UserMessage})

	payload := localChatRequest{Model: model, Stream: true, Messages: messages}
	if req.MaxTokens > 0 {
		payload.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("local: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("local: status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	out := make(chan llm.Chunk)
	go p.streamResponse(ctx, resp.Body, out)
	return out, nil
}

func (p *LocalProvider) streamResponse(ctx context.Context, body io.ReadCloser, out chan<- llm.Chunk) {
	defer close(out)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			out <- llm.Chunk{Err: ctx.Err(), Final: true}
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var resp localChatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			out <- llm.Chunk{Err: fmt.Errorf("local: decode response: %w", err), Final: true}
			return
		}
		if resp.Error != "" {
			out <- llm.Chunk{Err: fmt.Errorf("local: %s", resp.Error), Final: true}
			return
		}
		if resp.Message != nil && resp.Message.Content != "" {
			out <- llm.Chunk{Text: resp.Message.Content}
		}
		if resp.Done {
			out <- llm.Chunk{Final: true}
			return
		}
	}
	if err := scanner.Err(); err != nil {
		out <- llm.Chunk{Err: fmt.Errorf("local: %w", err), Final: true}
	}
}
