package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	payload := []byte(`{"schema":1,"round":3}`)
	if err := store.Save(KeyGame, payload); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(KeyGame)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Load() = %s, want %s", got, payload)
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if err := store.Save(KeyCards, []byte("old")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Save(KeyCards, []byte("new")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(KeyCards)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Load() after overwrite = %s, want new", got)
	}
}

func TestStoreLoadMissingKey(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	got, err := store.Load("never-saved")
	if err != nil {
		t.Fatalf("Load() of missing key failed: %v", err)
	}
	if got != nil {
		t.Errorf("Load() of missing key = %v, want nil", got)
	}
}

func TestStoreRemoveAndClear(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	keys := []string{KeyGame, KeyQuestions, KeyCards}
	for _, k := range keys {
		if err := store.Save(k, []byte(k)); err != nil {
			t.Fatalf("Save(%s) failed: %v", k, err)
		}
	}

	// Remove one key; removing it twice is fine.
	if err := store.Remove(KeyGame); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := store.Remove(KeyGame); err != nil {
		t.Fatalf("second Remove() failed: %v", err)
	}
	if got, _ := store.Load(KeyGame); got != nil {
		t.Errorf("Load() after Remove = %s, want nil", got)
	}
	if got, _ := store.Load(KeyQuestions); got == nil {
		t.Error("Remove() deleted an unrelated key")
	}

	// Clear wipes everything.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	for _, k := range keys {
		if got, _ := store.Load(k); got != nil {
			t.Errorf("Load(%s) after Clear = %s, want nil", k, got)
		}
	}
}

func TestMemoryGateway(t *testing.T) {
	m := NewMemory()

	if got, err := m.Load(KeyGame); err != nil || got != nil {
		t.Errorf("Load on empty Memory = (%v, %v), want (nil, nil)", got, err)
	}

	if err := m.Save(KeyGame, []byte("abc")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := m.Load(KeyGame)
	if err != nil || string(got) != "abc" {
		t.Errorf("Load() = (%s, %v), want abc", got, err)
	}

	// Mutating the returned slice must not affect stored data.
	got[0] = 'x'
	again, _ := m.Load(KeyGame)
	if string(again) != "abc" {
		t.Error("Memory returned an aliased slice")
	}

	if err := m.Remove(KeyGame); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if got, _ := m.Load(KeyGame); got != nil {
		t.Error("key still present after Remove")
	}

	m.Save("a", []byte("1"))
	m.Save("b", []byte("2"))
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if got, _ := m.Load("a"); got != nil {
		t.Error("key still present after Clear")
	}
}
