package jsonstream

import (
	"encoding/json"

	"github.com/omni-glass/host/internal/action"
)

// ParseMenu strictly parses the full buffer as an Action Menu. On any
// parse or validation failure it substitutes the fallback menu built
// from rawText instead of returning an error, since by the time a
// stream has ended there is no one left to retry the call.
func ParseMenu(rawText, document string) action.Menu {
	var menu action.Menu
	if err := json.Unmarshal([]byte(document), &menu); err != nil {
		return action.Fallback(rawText)
	}
	if err := menu.Validate(); err != nil {
		return action.Fallback(rawText)
	}
	return menu
}

// ParseResult strictly parses the full buffer as an Action Result.
func ParseResult(document string) (action.Result, error) {
	var result action.Result
	if err := json.Unmarshal([]byte(document), &result); err != nil {
		return action.Result{}, err
	}
	return result, nil
}
