package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omni-glass/host/internal/llm"
)

func TestLocalProviderIsRemoteFalse(t *testing.T) {
	p := NewLocalProvider(LocalConfig{DefaultModel: "llama3"})
	if p.IsRemote() {
		t.Error("IsRemote() = true, want false for a local provider")
	}
	if p.Label() != "local" {
		t.Errorf("Label() = %q, want local", p.Label())
	}
}

func TestLocalProviderStreamClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"message":{"role":"assistant","content":"hel"},"done":false}`,
			`{"message":{"role":"assistant","content":"lo"},"done":false}`,
			`{"done":true}`,
		}
		for _, l := range lines {
			io.WriteString(w, l+"\n")
		}
	}))
	defer server.Close()

	p := NewLocalProvider(LocalConfig{BaseURL: server.URL, DefaultModel: "llama3"})

	chunks, err := p.StreamClassify(context.Background(), llm.Request{UserMessage: "hi"})
	if err != nil {
		t.Fatalf("StreamClassify() error = %v", err)
	}

	var text strings.Builder
	sawFinal := false
	for c := range chunks {
		if c.Err != nil {
			t.Fatalf("unexpected chunk error: %v", c.Err)
		}
		text.WriteString(c.Text)
		if c.Final {
			sawFinal = true
		}
	}
	if text.String() != "hello" {
		t.Errorf("text = %q, want hello", text.String())
	}
	if !sawFinal {
		t.Error("expected a final chunk")
	}
}

func TestLocalProviderStreamErrorFromServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"model not found"}`+"\n")
	}))
	defer server.Close()

	p := NewLocalProvider(LocalConfig{BaseURL: server.URL, DefaultModel: "missing"})
	chunks, err := p.StreamExecute(context.Background(), llm.Request{UserMessage: "hi"})
	if err != nil {
		t.Fatalf("StreamExecute() error = %v", err)
	}

	var gotErr bool
	for c := range chunks {
		if c.Err != nil {
			gotErr = true
		}
	}
	if !gotErr {
		t.Error("expected a chunk carrying the server error")
	}
}

func TestLocalProviderMissingDefaultModel(t *testing.T) {
	p := NewLocalProvider(LocalConfig{})
	if _, err := p.StreamClassify(context.Background(), llm.Request{UserMessage: "hi"}); err == nil {
		t.Error("expected error when default_model is unset")
	}
}
