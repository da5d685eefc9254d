package manifest

import (
	"testing"
	"time"
)

func TestApprovalStoreSetAndGet(t *testing.T) {
	dir := t.TempDir()
	store := NewApprovalStore(dir)

	if err := store.Set("com.example.plugin", true, "hash1", time.Now()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	approved, err := store.IsApproved("com.example.plugin", "hash1")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if !approved {
		t.Error("expected plugin to be approved")
	}
}

func TestApprovalStoreStaleHashIsNotApproved(t *testing.T) {
	dir := t.TempDir()
	store := NewApprovalStore(dir)

	if err := store.Set("com.example.plugin", true, "hash1", time.Now()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	approved, err := store.IsApproved("com.example.plugin", "hash2")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if approved {
		t.Error("expected a permission change to invalidate the approval")
	}
}

func TestApprovalStoreUnknownPluginIsNotApproved(t *testing.T) {
	dir := t.TempDir()
	store := NewApprovalStore(dir)

	approved, err := store.IsApproved("com.example.unknown", "hash1")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if approved {
		t.Error("expected an unknown plugin to be unapproved")
	}
}

func TestApprovalStoreDenial(t *testing.T) {
	dir := t.TempDir()
	store := NewApprovalStore(dir)

	if err := store.Set("com.example.plugin", false, "hash1", time.Now()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	approved, err := store.IsApproved("com.example.plugin", "hash1")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if approved {
		t.Error("expected a denied plugin to remain unapproved")
	}
}

func TestApprovalStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	if err := NewApprovalStore(dir).Set("com.example.plugin", true, "hash1", time.Now()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	approved, err := NewApprovalStore(dir).IsApproved("com.example.plugin", "hash1")
	if err != nil {
		t.Fatalf("IsApproved() error = %v", err)
	}
	if !approved {
		t.Error("expected approval to persist to disk")
	}
}
