package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omni-glass/host/internal/action"
	"github.com/omni-glass/host/internal/audit"
	"github.com/omni-glass/host/internal/heuristics"
	"github.com/omni-glass/host/internal/jsonstream"
	"github.com/omni-glass/host/internal/llm"
	"github.com/omni-glass/host/internal/prompt"
	"github.com/omni-glass/host/internal/registry"
	"github.com/omni-glass/host/internal/safety"
)

// maxTokensClassify and maxTokensExecute bound the two phases' streams.
// They are independent of the per-call timeout; either can cut a stream
// short first.
const (
	maxTokensClassify = 1024
	maxTokensExecute  = 2048

	classifyTimeout = 60 * time.Second
	executeTimeout  = 60 * time.Second
)

// OCRFunc is the OCR collaborator's contract: given a screen region
// anchor (opaque to the pipeline) it returns extracted text, confidence,
// and the recognition level used, or an error.
type OCRFunc func(ctx context.Context) (text string, confidence float64, level RecognitionLevel, err error)

// Orchestrator drives every Pipeline Session through the fixed state
// machine. One Orchestrator is shared by every session; each session
// runs its own goroutine and is never touched concurrently by two
// goroutines at once — click and cancel requests are delivered through
// the session's own command channel.
type Orchestrator struct {
	provider llm.Provider
	registry *registry.Registry
	publish  Publisher
	logger   *audit.Logger

	mu       sync.Mutex
	sessions map[string]*sessionHandle
}

type sessionHandle struct {
	session *Session
	clicks  chan string
	cancel  context.CancelFunc
}

// New builds an Orchestrator. logger may be nil, in which case audit
// events are dropped.
func New(provider llm.Provider, reg *registry.Registry, publisher Publisher, logger *audit.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		registry: reg,
		publish:  publisher,
		logger:   logger,
		sessions: make(map[string]*sessionHandle),
	}
}

// ProcessSnip starts a new session at the ocr phase for a captured
// screen region. It returns immediately with the session id; progress is
// reported through the Publisher.
func (o *Orchestrator) ProcessSnip(ctx context.Context, ocr OCRFunc, platform string, anchor Anchor) string {
	sessionID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)

	handle := &sessionHandle{
		session: &Session{ID: sessionID, phase: PhaseOCR, CreatedAt: time.Now()},
		clicks:  make(chan string, 1),
		cancel:  cancel,
	}
	o.mu.Lock()
	o.sessions[sessionID] = handle
	o.mu.Unlock()

	go o.runFromOCR(runCtx, handle, ocr, platform, anchor)
	return sessionID
}

// ExecuteTypedCommand starts a new session that skips ocr entirely,
// treating text as if it were OCR output directly.
func (o *Orchestrator) ExecuteTypedCommand(ctx context.Context, text, platform string) string {
	sessionID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)

	snip := SnipContext{
		ExtractedText: text,
		Confidence:    1,
		Recognition:   RecognitionAccurate,
		Platform:      platform,
	}
	handle := &sessionHandle{
		session: &Session{ID: sessionID, Snip: snip, phase: PhaseClassify, CreatedAt: time.Now()},
		clicks:  make(chan string, 1),
		cancel:  cancel,
	}
	o.mu.Lock()
	o.sessions[sessionID] = handle
	o.mu.Unlock()

	go o.runClassifyThenWait(runCtx, handle)
	return sessionID
}

// ClickAction delivers the UI's action selection to a session waiting in
// await_click. It is a no-op, not an error, if the session has already
// moved past await_click — a duplicate click is simply swallowed.
func (o *Orchestrator) ClickAction(sessionID, actionID string) error {
	o.mu.Lock()
	handle, ok := o.sessions[sessionID]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session %q", sessionID)
	}
	select {
	case handle.clicks <- actionID:
	default:
	}
	return nil
}

// Cancel aborts a session's outstanding stream and removes it from the
// pipeline's bookkeeping. Any plugin process the session's last action
// was dispatched to is left running; only app shutdown or a plugin fault
// tears those down.
func (o *Orchestrator) Cancel(sessionID string) {
	o.mu.Lock()
	handle, ok := o.sessions[sessionID]
	if ok {
		delete(o.sessions, sessionID)
	}
	o.mu.Unlock()
	if ok {
		handle.cancel()
	}
}

// Snapshot returns a read-only view of a session's current state.
func (o *Orchestrator) Snapshot(sessionID string) (Snapshot, bool) {
	o.mu.Lock()
	handle, ok := o.sessions[sessionID]
	o.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return handle.session.snapshot(), true
}

func (o *Orchestrator) runFromOCR(ctx context.Context, handle *sessionHandle, ocr OCRFunc, platform string, anchor Anchor) {
	s := handle.session

	text, confidence, level, err := ocr(ctx)
	if err != nil || strings.TrimSpace(text) == "" {
		o.fail(s, ErrorTransient, ocrFailureMessage(err))
		return
	}

	s.Snip = SnipContext{
		ExtractedText: text,
		Confidence:    confidence,
		Recognition:   level,
		Platform:      platform,
		Anchor:        anchor,
	}
	s.phase = PhaseClassify
	o.runClassifyThenWait(ctx, handle)
}

func ocrFailureMessage(err error) string {
	if err != nil {
		return "ocr failed: " + err.Error()
	}
	return "ocr returned empty text"
}

func (o *Orchestrator) runClassifyThenWait(ctx context.Context, handle *sessionHandle) {
	s := handle.session

	menu := o.classify(ctx, s)

	s.menu = menu
	s.phase = PhaseAwaitClick
	o.publish.PublishMenu(MenuEvent{SessionID: s.ID, Menu: menu})

	o.awaitClick(ctx, handle)
}

// classify runs the classify phase to completion and always returns a
// valid Menu: parse failures and stream failures alike substitute the
// fallback menu, since the orchestrator must always leave the user with
// an actionable menu once it reaches await_click.
func (o *Orchestrator) classify(ctx context.Context, s *Session) action.Menu {
	flags := heuristics.Detect(s.Snip.ExtractedText)

	outbound := s.Snip.ExtractedText
	var redaction safety.RedactionResult
	if o.provider.IsRemote() {
		redaction = safety.Redact(outbound)
		outbound = redaction.Text
	}
	injectionSuspected := safety.LooksInjected(s.Snip.ExtractedText)

	sourceContext := s.Snip.SourceApp
	req := llm.Request{
		System:      prompt.ClassifySystemPrompt,
		UserMessage: prompt.BuildClassify(prompt.ClassifyRequest{
			ExtractedText:  outbound,
			Heuristics:     flags,
			SourceContext:  sourceContext,
			AvailableTools: o.registry.PromptEntries(),
		}),
		MaxTokens: maxTokensClassify,
	}

	streamCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	chunks, err := o.provider.StreamClassify(streamCtx, req)
	if err != nil {
		o.logError(ctx, "classify_stream_open", err, s.ID)
		return o.finishMenu(ctx, s, action.Fallback(s.Snip.ExtractedText), redaction, injectionSuspected)
	}

	extractor := jsonstream.New()
	var document strings.Builder
	var streamErr error

	for chunk := range chunks {
		if chunk.Err != nil {
			streamErr = chunk.Err
			continue
		}
		if chunk.Text == "" {
			continue
		}
		document.WriteString(chunk.Text)
		if event, ok := extractor.Feed(chunk.Text); ok {
			o.publish.PublishSkeleton(SkeletonEvent{
				SessionID:   s.ID,
				ContentType: event.ContentType,
				Summary:     event.Summary,
			})
		}
	}

	if streamErr != nil {
		o.logError(ctx, "classify_stream", streamErr, s.ID)
		return o.finishMenu(ctx, s, action.Fallback(s.Snip.ExtractedText), redaction, injectionSuspected)
	}

	menu := jsonstream.ParseMenu(s.Snip.ExtractedText, document.String())
	return o.finishMenu(ctx, s, menu, redaction, injectionSuspected)
}

// finishMenu applies every invariant a returned Action Menu must satisfy
// before it reaches await_click: the redaction/injection annotations,
// a deterministic sort by priority with id as the tie-break, and a
// filter dropping any action id the host does not recognise. If
// filtering would leave the menu empty, the fallback menu is
// substituted instead, since the orchestrator never hands the UI an
// empty menu.
func (o *Orchestrator) finishMenu(ctx context.Context, s *Session, menu action.Menu, redaction safety.RedactionResult, injectionSuspected bool) action.Menu {
	menu.Redacted = redaction.Redacted
	menu.InjectionSuspected = injectionSuspected

	sortActions(menu.Actions)
	menu.Actions = o.dropUnknownActions(ctx, s, menu.Actions)
	if len(menu.Actions) == 0 {
		fallback := action.Fallback(s.Snip.ExtractedText)
		fallback.Redacted = menu.Redacted
		fallback.InjectionSuspected = menu.InjectionSuspected
		return fallback
	}
	return menu
}

// sortActions puts a Menu's actions into a deterministic total order:
// ascending priority, with id as an explicit tie-break so equal
// priorities never depend on the LLM's emission order.
func sortActions(actions []action.Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority < actions[j].Priority
		}
		return actions[i].ID < actions[j].ID
	})
}

// dropUnknownActions filters out any action whose id is neither a
// built-in action id nor the name of a tool currently registered in the
// Tool Registry. The CLASSIFY system prompt instructs the model never
// to invent an id, but that instruction is advisory only; this is the
// server-side enforcement.
func (o *Orchestrator) dropUnknownActions(ctx context.Context, s *Session, actions []action.Action) []action.Action {
	known := o.knownActionIDs()

	kept := make([]action.Action, 0, len(actions))
	var dropped []string
	for _, a := range actions {
		if known[a.ID] {
			kept = append(kept, a)
			continue
		}
		dropped = append(dropped, a.ID)
	}
	if len(dropped) > 0 {
		o.logError(ctx, "classify_unknown_action_ids",
			fmt.Errorf("dropped action ids not built-in or registered: %s", strings.Join(dropped, ", ")),
			s.ID)
	}
	return kept
}

// knownActionIDs is the set of action ids the orchestrator will accept
// from a classify response: the fixed built-in vocabulary, plus every
// tool currently registered in the Tool Registry, addressable by both
// its qualified name and its unqualified tool name.
func (o *Orchestrator) knownActionIDs() map[string]bool {
	known := make(map[string]bool, len(action.BuiltinActionIDs))
	for id := range action.BuiltinActionIDs {
		known[id] = true
	}
	for _, entry := range o.registry.PromptEntries() {
		known[entry.Name] = true
		if _, name, ok := strings.Cut(entry.Name, ":"); ok {
			known[name] = true
		}
	}
	return known
}

func (o *Orchestrator) awaitClick(ctx context.Context, handle *sessionHandle) {
	s := handle.session

	select {
	case <-ctx.Done():
		return
	case actionID := <-handle.clicks:
		s.selectedID = actionID
		a, ok := findAction(s.menu, actionID)
		if !ok {
			o.fail(s, ErrorUser, fmt.Sprintf("unknown action id %q", actionID))
			return
		}
		if !a.RequiresExecution {
			// Local actions are dispatched by the UI collaborator
			// directly; the orchestrator's job ends at await_click.
			s.phase = PhaseDone
			return
		}
		s.phase = PhaseExecute
		o.execute(ctx, s, actionID)
	}
}

func findAction(menu action.Menu, id string) (action.Action, bool) {
	for _, a := range menu.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return action.Action{}, false
}

func (o *Orchestrator) execute(ctx context.Context, s *Session, actionID string) {
	outbound := s.Snip.ExtractedText
	var redacted bool
	if o.provider.IsRemote() {
		redaction := safety.Redact(outbound)
		outbound = redaction.Text
		redacted = redaction.Redacted
	}

	userMessage, err := prompt.BuildExecute(actionID, prompt.ExecuteVariables{
		ExtractedText: outbound,
		Platform:      s.Snip.Platform,
		SourceApp:     s.Snip.SourceApp,
		DetectedShell: detectedShell(),
	})
	if err != nil {
		o.failExecute(ctx, s, actionID, ErrorParse, err.Error())
		return
	}

	req := llm.Request{
		System:      prompt.ExecuteSystemPrompt,
		UserMessage: userMessage,
		MaxTokens:   maxTokensExecute,
	}

	streamCtx, cancel := context.WithTimeout(ctx, executeTimeout)
	defer cancel()

	chunks, err := o.provider.StreamExecute(streamCtx, req)
	if err != nil {
		o.failExecute(ctx, s, actionID, ErrorTransient, err.Error())
		return
	}

	var document strings.Builder
	var streamErr error
	for chunk := range chunks {
		if chunk.Err != nil {
			streamErr = chunk.Err
			continue
		}
		document.WriteString(chunk.Text)
	}
	if streamErr != nil {
		o.failExecute(ctx, s, actionID, ErrorTransient, streamErr.Error())
		return
	}

	result, err := jsonstream.ParseResult(document.String())
	if err != nil {
		o.failExecute(ctx, s, actionID, ErrorParse, err.Error())
		return
	}

	if result.ResultBody.Kind == action.ResultCommand {
		check := safety.Check(result.ResultBody.Command)
		if !check.Safe {
			result.Status = action.StatusError
			result.ResultBody = action.ResultBody{Kind: action.ResultCommand, Rationale: check.Reason}
			o.logDenied(ctx, actionID, check.Reason, s.ID)
		}
	}

	if redacted {
		result.Meta.Note = appendNote(result.Meta.Note, "source text was redacted before being sent to the provider")
		o.logError(ctx, "execute_redacted", fmt.Errorf("redacted text sent for action %s", actionID), s.ID)
	}

	s.result = result
	s.phase = PhaseDone
	o.publish.PublishResult(ResultEvent{SessionID: s.ID, Result: result})
}

func (o *Orchestrator) failExecute(ctx context.Context, s *Session, actionID string, class ErrorClass, message string) {
	o.logError(ctx, "execute_"+string(class), fmt.Errorf("%s", message), s.ID)
	o.fail(s, class, message)
}

func (o *Orchestrator) fail(s *Session, class ErrorClass, message string) {
	s.phase = PhaseFailed
	s.errorClass = class
	s.errorMessage = message
	o.publish.PublishFailed(FailedEvent{SessionID: s.ID, Class: class, Message: message})
}

func (o *Orchestrator) logError(ctx context.Context, action string, err error, sessionID string) {
	if o.logger == nil {
		return
	}
	o.logger.LogError(ctx, audit.EventType("pipeline_error"), action, err.Error(), nil, sessionID)
}

func (o *Orchestrator) logDenied(ctx context.Context, actionID, reason, sessionID string) {
	if o.logger == nil {
		return
	}
	o.logger.LogToolDenied(ctx, actionID, "", reason, "blocklist", sessionID)
}

// appendNote joins an execute Meta note onto any note already set, so a
// redaction annotation never clobbers a note the provider itself produced.
func appendNote(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "; " + addition
}

// detectedShell reports the shell the run_command template should target.
// The orchestrator itself never spawns a shell; this only names one for
// the EXECUTE prompt to generate syntax against.
func detectedShell() string {
	if shell := shellFromEnv(); shell != "" {
		return shell
	}
	return "bash"
}
