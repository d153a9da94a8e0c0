package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := fs.Set(ctx, "cart", `[{"id":"7-Blinkit"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok, err := fs.Get(ctx, "cart")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if val != `[{"id":"7-Blinkit"}]` {
		t.Errorf("Get: got %q", val)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, ok, err := fs.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("missing key reported as present")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.Set(ctx, "location", "Bengaluru, Karnataka, India"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	val, ok, _ := second.Get(ctx, "location")
	if !ok || val != "Bengaluru, Karnataka, India" {
		t.Errorf("after reopen: ok=%v val=%q", ok, val)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := fs.Set(ctx, "lat", "12.97"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := fs.Delete(ctx, "lat"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := fs.Get(ctx, "lat"); ok {
		t.Error("deleted key still present")
	}

	// Deleting an absent key is a no-op.
	if err := fs.Delete(ctx, "lat"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}
