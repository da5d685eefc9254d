package config

import (
	"encoding/json"
	"testing"
)

func TestJSONSchemaIsValidJSON(t *testing.T) {
	data, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
	if _, ok := doc["$schema"]; !ok {
		t.Error("expected a $schema property in the reflected document")
	}
}

func TestJSONSchemaIsCached(t *testing.T) {
	first, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	second, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected repeated calls to return identical cached output")
	}
}
