package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// ExecuteSystemPrompt is sent verbatim as the system prompt for every
// execute call. It constrains the model to one JSON result document for
// the single action the user clicked.
const ExecuteSystemPrompt = `You are the execution stage of a desktop action engine. You are given the action the user clicked and the context needed to carry it out. Produce the result of that single action.

Rules:
- Respond with exactly one JSON object. No prose before or after it, no markdown code fences.
- The object has keys: status, action_id, result_body, meta (optional).
- status is one of: success, error, needs_confirmation.
- result_body has a kind key plus the fields that kind uses: text, filename, content, mime_type, command, rationale, clipboard.
- Do not call any tool yourself and do not ask the user a follow-up question. If you cannot complete the action, set status to error and explain why in result_body.rationale.`

// actionTemplates holds the per-action-id user message template, keyed
// by action id. Unlisted action ids fall back to genericTemplate.
var actionTemplates = map[string]string{
	"copy_text": `Extract the clean, copyable text from the following and return it verbatim in result_body.text.

{{.ExtractedText}}`,
	"explain_error": `Explain this error and suggest a fix. The user is working on {{.Platform}}{{if .SourceApp}} in {{.SourceApp}}{{end}}.

{{.ExtractedText}}`,
	"run_command": `Translate the intent below into a single shell command for {{.DetectedShell}} and return it in result_body.command. Do not run it yourself.

{{.ExtractedText}}`,
	"save_as_file": `Produce a suitable filename and file content for the following.

{{.ExtractedText}}`,
}

const genericTemplate = `Carry out the action "{{.ActionID}}" on the following content.

{{.ExtractedText}}`

// ExecuteVariables is the substitution set available to every per-action
// template.
type ExecuteVariables struct {
	ActionID      string
	ExtractedText string
	Platform      string
	SourceApp     string
	DetectedShell string
}

// BuildExecute renders the per-action user message for actionID,
// falling back to a generic template when no action-specific one is
// registered.
func BuildExecute(actionID string, vars ExecuteVariables) (string, error) {
	vars.ActionID = actionID

	tmplStr, ok := actionTemplates[actionID]
	if !ok {
		tmplStr = genericTemplate
	}

	t, err := template.New(actionID).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parse execute template for %q: %w", actionID, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute template for %q: %w", actionID, err)
	}
	return buf.String(), nil
}
