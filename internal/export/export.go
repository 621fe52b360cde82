// Package export builds the downloadable snapshot of both collections.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"prodhub/internal/core"
)

// FilePrefix is prepended to the export date to form the artifact name.
const FilePrefix = "productivity-hub-data-"

// Source is the read side of the record store.
type Source interface {
	Tasks() []core.Task
	Expenses() []core.Expense
	Now() time.Time
}

// Snapshot uses the same record serialization as persistence.
type Snapshot struct {
	Tasks      []core.Task    `json:"tasks"`
	Expenses   []core.Expense `json:"expenses"`
	ExportDate time.Time      `json:"exportDate"`
}

// New captures the current collections.
func New(src Source) Snapshot {
	return Snapshot{
		Tasks:      src.Tasks(),
		Expenses:   src.Expenses(),
		ExportDate: src.Now(),
	}
}

// FileName returns productivity-hub-data-YYYY-MM-DD.json for the export date.
func (s Snapshot) FileName() string {
	return FilePrefix + s.ExportDate.Format(core.DateLayout) + ".json"
}

// Encode writes the snapshot as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteFile writes the snapshot into dir and returns the file path. The file
// is written to a temporary name first so a failed export never leaves a
// truncated artifact behind.
func (s Snapshot) WriteFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, s.FileName())

	tmp, err := os.CreateTemp(dir, ".export-*.json")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.Encode(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export file: %w", err)
	}
	return path, nil
}

// Decode reads a snapshot. Nil collections become empty ones.
func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Tasks == nil {
		s.Tasks = []core.Task{}
	}
	if s.Expenses == nil {
		s.Expenses = []core.Expense{}
	}
	return s, nil
}

// DirWriter writes each snapshot as a file into Dir. Snapshots taken on the
// same day overwrite each other.
type DirWriter struct {
	Dir string
}

func (w DirWriter) WriteSnapshot(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := snap.WriteFile(w.Dir)
	return err
}
