package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/exitwatch/prover/internal/domain"
	"github.com/exitwatch/prover/internal/ports"
)

// filePersister implements ports.RootPersister as a single JSON file,
// written atomically via a temp-file-plus-rename so a crash mid-write never
// leaves lastProcessedRoot corrupted (spec.md §6 "Persisted state").
type filePersister struct {
	path string
}

func NewFilePersister(path string) ports.RootPersister {
	return &filePersister{path: path}
}

type persistedRootFile struct {
	Root string `json:"root"`
	Slot uint64 `json:"slot"`
}

func (f *filePersister) Load(ctx context.Context) (*ports.PersistedRoot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read persisted root: %w", err)
	}

	var parsed persistedRootFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode persisted root: %w", err)
	}

	root, err := domain.ParseRoot(parsed.Root)
	if err != nil {
		return nil, fmt.Errorf("decode persisted root hex: %w", err)
	}
	return &ports.PersistedRoot{Root: [32]byte(root), Slot: parsed.Slot}, nil
}

func (f *filePersister) Save(ctx context.Context, root ports.PersistedRoot) error {
	payload := persistedRootFile{Root: fmt.Sprintf("0x%x", root.Root), Slot: root.Slot}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode persisted root: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".lastProcessedRoot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	return nil
}
