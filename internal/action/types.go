// Package action defines the data model shared by the classify and execute
// phases of the pipeline: the menu offered to the user and the result of
// running whichever entry they picked.
package action

import "errors"

var errEmptyMenu = errors.New("action menu has no actions")

// ContentType is the closed tag set a classify response is allowed to use.
type ContentType string

const (
	ContentError   ContentType = "error"
	ContentCode    ContentType = "code"
	ContentTable   ContentType = "table"
	ContentList    ContentType = "list"
	ContentProse   ContentType = "prose"
	ContentKVPairs ContentType = "kv_pairs"
	ContentMixed   ContentType = "mixed"
	ContentUnknown ContentType = "unknown"
)

// Action is a single offer presented to the user on the action menu.
type Action struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	Icon              string `json:"icon"`
	Priority          int    `json:"priority"`
	Description       string `json:"description"`
	RequiresExecution bool   `json:"requires_execution"`
}

// Menu is the result of the classify phase. At least one Action is always
// present; copy_text is either present or trivially synthesised by the
// dispatcher when absent.
type Menu struct {
	ContentType      ContentType `json:"content_type"`
	Confidence       float64     `json:"confidence"`
	Summary          string      `json:"summary"`
	DetectedLanguage string      `json:"detected_language,omitempty"`
	Actions          []Action    `json:"actions"`

	// Redacted is true when the text sent to the provider had one or
	// more safety patterns stripped before this menu was produced. It
	// never reflects back the redacted content itself, only the fact
	// that redaction happened, so the user knows the model saw a
	// cleaned version of their snip.
	Redacted bool `json:"redacted,omitempty"`

	// InjectionSuspected is true when the source text matched a
	// prompt-injection heuristic. It is advisory only: it never blocks
	// classification, it only flags the menu so the user can see the
	// source text tried to steer the model.
	InjectionSuspected bool `json:"injection_suspected,omitempty"`
}

// Skeleton is the partial view of a Menu the streaming extractor can emit
// before the full document has closed: just enough to paint a menu title.
type Skeleton struct {
	ContentType ContentType `json:"content_type"`
	Summary     string      `json:"summary"`
}

// Status is the outcome of the execute phase.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusError             Status = "error"
	StatusNeedsConfirmation Status = "needs_confirmation"
)

// ResultKind tags which shape ResultBody carries.
type ResultKind string

const (
	ResultText      ResultKind = "text"
	ResultFile      ResultKind = "file"
	ResultCommand   ResultKind = "command"
	ResultClipboard ResultKind = "clipboard"
)

// ResultBody is the tagged-variant payload of an Action Result. Exactly the
// fields matching Kind are meaningful; the others are left zero.
type ResultBody struct {
	Kind ResultKind `json:"kind"`

	// Text holds a markdown string for Kind == text.
	Text string `json:"text,omitempty"`

	// File fields hold a save-dialog offer for Kind == file.
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
	MimeType string `json:"mime_type,omitempty"`

	// Command fields hold a shell string and rationale for Kind ==
	// command. A command result must carry Status == needs_confirmation.
	Command   string `json:"command,omitempty"`
	Rationale string `json:"rationale,omitempty"`

	// Clipboard holds a string to copy silently for Kind == clipboard.
	Clipboard string `json:"clipboard,omitempty"`
}

// Meta carries optional bookkeeping about an execute call.
type Meta struct {
	TokensUsed int    `json:"tokens_used,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Result is the result of the execute phase.
type Result struct {
	Status     Status     `json:"status"`
	ActionID   string     `json:"action_id"`
	ResultBody ResultBody `json:"result_body"`
	Meta       Meta       `json:"meta,omitempty"`
}

// BuiltinActionIDs is the fixed vocabulary of action ids the CLASSIFY
// system prompt advertises as always available, independent of any
// registered tool. Every action id a classify response returns must
// either appear here or match a tool currently registered in the Tool
// Registry; an id matching neither is not something the host knows how
// to route and must not reach the user's menu.
var BuiltinActionIDs = map[string]bool{
	"copy_text":   true,
	"explain":     true,
	"search_web":  true,
	"export_csv":  true,
	"fix_error":   true,
	"translate":   true,
	"summarize":   true,
	"format_code": true,
	"run_command": true,
	"open_url":    true,
}

// Validate checks the Menu invariant: at least one action must be present.
func (m Menu) Validate() error {
	if len(m.Actions) == 0 {
		return errEmptyMenu
	}
	return nil
}

// Fallback is substituted whenever a classify stream fails to parse as a
// strict Menu. It always offers copy_text, explain, and search_web so the
// user is never left with a dead end regardless of why classification
// failed. rawText is accepted for parity with callers that may want to
// log or inspect it; the fallback menu itself does not depend on it.
func Fallback(rawText string) Menu {
	return Menu{
		ContentType: ContentUnknown,
		Confidence:  0,
		Summary:     "Could not analyze content",
		Actions: []Action{
			{
				ID:                "copy_text",
				Label:             "Copy Text",
				Icon:              "copy",
				Priority:          0,
				Description:       "Copy the extracted text to the clipboard.",
				RequiresExecution: false,
			},
			{
				ID:                "explain",
				Label:             "Explain",
				Icon:              "help-circle",
				Priority:          1,
				Description:       "Ask the model to explain this content.",
				RequiresExecution: true,
			},
			{
				ID:                "search_web",
				Label:             "Search the Web",
				Icon:              "search",
				Priority:          2,
				Description:       "Search the web for this content.",
				RequiresExecution: false,
			},
		},
	}
}
