package jsonstream

import "testing"

func TestParseMenuValid(t *testing.T) {
	doc := `{"content_type": "code", "confidence": 0.8, "summary": "a function", "actions": [{"id": "copy_text", "label": "Copy"}]}`
	menu := ParseMenu("raw", doc)
	if menu.ContentType != "code" {
		t.Errorf("ContentType = %q", menu.ContentType)
	}
	if len(menu.Actions) != 1 {
		t.Fatalf("Actions = %v", menu.Actions)
	}
}

func TestParseMenuFallbackOnInvalidJSON(t *testing.T) {
	menu := ParseMenu("raw text", `{"content_type": "code"`)
	if len(menu.Actions) == 0 {
		t.Fatal("expected fallback menu to have at least one action")
	}
}

func TestParseMenuFallbackOnEmptyActions(t *testing.T) {
	menu := ParseMenu("raw text", `{"content_type": "prose", "summary": "x", "actions": []}`)
	if len(menu.Actions) == 0 {
		t.Fatal("expected fallback menu when actions is empty")
	}
}

func TestParseResultValid(t *testing.T) {
	doc := `{"status": "success", "action_id": "copy_text", "result_body": {"kind": "text", "text": "hello"}}`
	result, err := ParseResult(doc)
	if err != nil {
		t.Fatalf("ParseResult() error = %v", err)
	}
	if result.Status != "success" {
		t.Errorf("Status = %q", result.Status)
	}
}

func TestParseResultInvalidJSON(t *testing.T) {
	if _, err := ParseResult(`{not json`); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
