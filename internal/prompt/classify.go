// Package prompt assembles the CLASSIFY and EXECUTE prompts the
// orchestrator sends to the LLM transport: fixed system prompts plus
// per-call variable substitution via text/template.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/omni-glass/host/internal/heuristics"
	"github.com/omni-glass/host/internal/registry"
)

// ClassifySystemPrompt is sent verbatim as the system prompt for every
// classify call. The LLM is instructed to return exactly one JSON
// document and nothing else.
const ClassifySystemPrompt = `You are the classification stage of a desktop action engine. Given extracted text and structural hints, return a single JSON document describing what the text is and which actions the user could take on it.

Rules:
- Respond with exactly one JSON object. No prose before or after it, no markdown code fences.
- The object has keys: content_type, confidence, summary, detected_language (optional), actions.
- content_type is one of: error, code, table, list, prose, kv_pairs, mixed, unknown.
- confidence is a float between 0 and 1.
- summary is a short human-readable description of the content, under 80 characters.
- actions is a non-empty array. Each action has: id, label, icon, priority, description, requires_execution.
- Every action id must be either a built-in action or one of the tool names listed below. Never invent an action id.
- Do not call any tool yourself. You are only proposing actions; the host decides what to run.`

// ClassifyRequest carries everything needed to render the CLASSIFY user
// message.
type ClassifyRequest struct {
	ExtractedText   string
	Heuristics      heuristics.Flags
	SourceContext   string
	AvailableTools  []registry.PromptEntry
}

// BuildClassify renders the CLASSIFY user message. SourceContext is the
// literal string "unknown" when no source application context is
// available.
func BuildClassify(req ClassifyRequest) string {
	sourceContext := req.SourceContext
	if strings.TrimSpace(sourceContext) == "" {
		sourceContext = "unknown"
	}

	toolsJSON, err := json.Marshal(req.AvailableTools)
	if err != nil {
		toolsJSON = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extracted text:\n%s\n\n", req.ExtractedText)
	fmt.Fprintf(&b, "Structural hints: has_table_structure=%t has_code_structure=%t\n\n", req.Heuristics.HasTableStructure, req.Heuristics.HasCodeStructure)
	fmt.Fprintf(&b, "Source context: %s\n\n", sourceContext)
	fmt.Fprintf(&b, "Available tools (as action ids):\n%s\n", toolsJSON)

	return b.String()
}
