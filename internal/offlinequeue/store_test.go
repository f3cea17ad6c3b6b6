package offlinequeue

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get("k")
	if err != nil || !ok || value != "v" {
		t.Fatalf("expected v, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if _, ok, err := store.Get(DefaultQueueKey); err != nil || ok {
		t.Fatalf("expected miss on fresh dir, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(DefaultQueueKey, `[{"tempId":"TMP-1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := store.Get(DefaultQueueKey)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `[{"tempId":"TMP-1"}]` {
		t.Fatalf("unexpected value %q", value)
	}

	// no temp file should survive a completed write
	leftover := filepath.Join(dir, DefaultQueueKey+".json.tmp")
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatalf("temp file %s left behind", leftover)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set("queue", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set("queue", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, err := store.Get("queue")
	if err != nil || value != "second" {
		t.Fatalf("expected second, got %q err=%v", value, err)
	}
}
