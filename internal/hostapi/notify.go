package hostapi

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/omni-glass/host/internal/mcp"
	"github.com/omni-glass/host/internal/pipeline"
)

// LineWriter serialises concurrent writers onto one NDJSON stream. The
// Server's command responses and the StdioPublisher's event
// notifications share a single LineWriter over stdout so a response
// and a notification can never interleave into a malformed line.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter wraps w for line-delimited JSON output.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteJSON marshals v and writes it as one newline-terminated line.
func (lw *LineWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err = lw.w.Write(append(data, '\n'))
	return err
}

// StdioPublisher writes pipeline events to the UI collaborator as
// JSON-RPC 2.0 notifications over the same NDJSON stream used for
// host command responses. It implements pipeline.Publisher.
type StdioPublisher struct {
	lw *LineWriter
}

// NewStdioPublisher delivers notifications through lw, the same
// LineWriter the Server writes command responses through.
func NewStdioPublisher(lw *LineWriter) *StdioPublisher {
	return &StdioPublisher{lw: lw}
}

func (p *StdioPublisher) notify(method string, params any) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return
	}
	p.lw.WriteJSON(mcp.JSONRPCNotification{JSONRPC: "2.0", Method: method, Params: paramsJSON})
}

func (p *StdioPublisher) PublishSkeleton(evt pipeline.SkeletonEvent) {
	p.notify("snip.skeleton", evt)
}

func (p *StdioPublisher) PublishMenu(evt pipeline.MenuEvent) {
	p.notify("snip.menu", evt)
}

func (p *StdioPublisher) PublishResult(evt pipeline.ResultEvent) {
	p.notify("snip.result", evt)
}

func (p *StdioPublisher) PublishFailed(evt pipeline.FailedEvent) {
	p.notify("snip.failed", evt)
}
