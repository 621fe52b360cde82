package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func TestSQLiteKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prodhub.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok, err := kv.Get(ctx, KeyTasks); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, KeyTasks, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Upsert overwrites.
	if err := kv.Set(ctx, KeyTasks, []byte(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("set again: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, KeyTasks)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(v) != `[{"id":"b"}]` {
		t.Fatalf("unexpected value %q", v)
	}

	if err := reopened.Delete(ctx, KeyTasks); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, KeyTasks); ok {
		t.Fatal("expected key to be gone")
	}
}

func TestSQLiteKV_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()

	if err := kv.Set(ctx, KeyTasks, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, KeyExpenses, []byte("[]")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := kv.Get(ctx, KeyExpenses)
	if err != nil || !ok || string(v) != "[]" {
		t.Fatalf("expenses affected by tasks value: %q %v %v", v, ok, err)
	}
}

func TestSQLiteKV_Closed(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = kv.Close()
	if err := kv.Set(context.Background(), KeyTheme, []byte("dark")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSQLiteKV_CloseDuringWrites(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 80)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 5 {
				err := kv.Set(ctx, KeyTasks, []byte(fmt.Sprintf("[%d,%d]", i, j)))
				if err != nil && !errors.Is(err, ErrClosed) {
					errs <- err
				}
				if _, _, err := kv.Get(ctx, KeyTasks); err != nil && !errors.Is(err, ErrClosed) {
					errs <- err
				}
			}
		}()
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()

	v, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 || dirty {
		t.Fatalf("expected clean version 1, got %d dirty=%v", v, dirty)
	}
}
