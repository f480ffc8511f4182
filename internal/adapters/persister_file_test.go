package adapters

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/exitwatch/prover/internal/ports"
)

func TestFilePersisterLoadReturnsNilWhenFileMissing(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "lastProcessedRoot.json"))
	got, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestFilePersisterRoundTrips(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "lastProcessedRoot.json"))
	want := ports.PersistedRoot{Root: [32]byte{1, 2, 3}, Slot: 42}

	if err := p.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFilePersisterOverwritesPreviousValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastProcessedRoot.json")
	p := NewFilePersister(path)

	first := ports.PersistedRoot{Root: [32]byte{1}, Slot: 1}
	second := ports.PersistedRoot{Root: [32]byte{2}, Slot: 2}

	if err := p.Save(context.Background(), first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := p.Save(context.Background(), second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != second {
		t.Fatalf("expected %+v, got %+v", second, got)
	}
}
