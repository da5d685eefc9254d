// Package pipeline implements the orchestrator state machine that turns
// a snip or typed command into a progressively-rendered action menu and,
// on user selection, an executed action result.
package pipeline

import (
	"time"

	"github.com/omni-glass/host/internal/action"
)

// RecognitionLevel tags how the OCR collaborator recognised a Snip.
type RecognitionLevel string

const (
	RecognitionFast     RecognitionLevel = "fast"
	RecognitionAccurate RecognitionLevel = "accurate"
)

// Anchor is the screen position a menu should be positioned against.
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SnipContext is the immutable bundle produced by the capture
// collaborator: everything the pipeline needs to classify and position
// a menu, independent of how the text was obtained.
type SnipContext struct {
	ExtractedText string           `json:"extracted_text"`
	Confidence    float64          `json:"confidence"`
	Recognition   RecognitionLevel `json:"recognition"`
	Platform      string           `json:"platform"`
	SourceApp     string           `json:"source_app,omitempty"`
	Anchor        Anchor           `json:"anchor"`
}

// Phase is the current state of a Pipeline Session.
type Phase string

const (
	PhaseOCR         Phase = "ocr"
	PhaseClassify    Phase = "classify"
	PhaseAwaitClick  Phase = "await_click"
	PhaseExecute     Phase = "execute"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// ErrorClass taxonomizes why a session failed, attached to the session
// and to the corresponding log entry.
type ErrorClass string

const (
	ErrorTransient ErrorClass = "transient"
	ErrorParse     ErrorClass = "parse"
	ErrorPolicy    ErrorClass = "policy"
	ErrorPlugin    ErrorClass = "plugin"
	ErrorUser      ErrorClass = "user"
)

// Session is the mutable state of one snip or typed command as it moves
// through the state machine. It is owned exclusively by the goroutine
// running its Run loop; callers that need a point-in-time view use
// Snapshot.
type Session struct {
	ID        string
	Snip      SnipContext
	CreatedAt time.Time

	phase        Phase
	menu         action.Menu
	selectedID   string
	result       action.Result
	errorClass   ErrorClass
	errorMessage string
}

// Snapshot is a read-only copy of a Session's current state, safe to
// hand to the UI collaborator or a log entry.
type Snapshot struct {
	ID            string        `json:"id"`
	Phase         Phase         `json:"phase"`
	ExtractedText string        `json:"extracted_text,omitempty"`
	Menu          action.Menu   `json:"menu,omitempty"`
	SelectedID    string        `json:"selected_action_id,omitempty"`
	Result        action.Result `json:"result,omitempty"`
	ErrorClass    ErrorClass    `json:"error_class,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:            s.ID,
		Phase:         s.phase,
		ExtractedText: s.Snip.ExtractedText,
		Menu:          s.menu,
		SelectedID:    s.selectedID,
		Result:        s.result,
		ErrorClass:    s.errorClass,
		ErrorMessage:  s.errorMessage,
	}
}

// SkeletonEvent is published to the UI as soon as the streaming
// extractor has captured both the content type and the summary, well
// before the full Action Menu has been parsed.
type SkeletonEvent struct {
	SessionID   string `json:"session_id"`
	ContentType string `json:"content_type"`
	Summary     string `json:"summary"`
}

// MenuEvent is published once the complete Action Menu has been parsed
// (or substituted with the fallback menu).
type MenuEvent struct {
	SessionID string      `json:"session_id"`
	Menu      action.Menu `json:"menu"`
}

// ResultEvent is published once an executed action's result is ready.
type ResultEvent struct {
	SessionID string        `json:"session_id"`
	Result    action.Result `json:"result"`
}

// FailedEvent is published when a session transitions to failed.
type FailedEvent struct {
	SessionID string     `json:"session_id"`
	Class     ErrorClass `json:"error_class"`
	Message   string     `json:"message"`
}

// Publisher receives the pipeline's checkpoint events. The UI
// collaborator implements this; tests use a fake that records events.
type Publisher interface {
	PublishSkeleton(SkeletonEvent)
	PublishMenu(MenuEvent)
	PublishResult(ResultEvent)
	PublishFailed(FailedEvent)
}
