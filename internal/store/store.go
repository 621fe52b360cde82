// Package store owns the in-memory task and expense collections and keeps
// them in step with a storage.KV backend.
//
// Write failures never lose a mutation: the change stays applied in memory,
// the key is marked pending and every later save (and Close) retries it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"prodhub/internal/core"
	applog "prodhub/internal/log"
	"prodhub/internal/storage"
)

// Collection names used in change events.
const (
	CollectionTasks    = "tasks"
	CollectionExpenses = "expenses"
	CollectionTheme    = "theme"
)

// Change actions.
const (
	ActionCreated = "created"
	ActionToggled = "toggled"
	ActionDeleted = "deleted"
	ActionSorted  = "sorted"
	ActionSet     = "set"
)

// Change describes one persisted mutation.
type Change struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         string    `json:"id,omitempty"`
	Revision   uint64    `json:"revision"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier receives a Change after each persisted mutation. Errors are
// logged and never fail the mutation.
type Notifier interface {
	NotifyChange(ctx context.Context, c Change) error
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

type Store struct {
	kv       storage.KV
	logger   *slog.Logger
	clock    func() time.Time
	loc      *time.Location
	notifier Notifier

	mu       sync.RWMutex
	tasks    []core.Task
	expenses []core.Expense
	theme    core.Theme
	revision uint64
	pending  map[string]struct{}
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		logger:   slog.Default(),
		clock:    time.Now,
		loc:      time.Local,
		tasks:    []core.Task{},
		expenses: []core.Expense{},
		theme:    core.LightTheme,
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current instant in the store's location.
func (s *Store) Now() time.Time {
	return s.clock().In(s.loc)
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// Revision increases on every load and every applied mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Load replaces the in-memory state with what the backend holds. Each key is
// read independently: a missing, unreadable or malformed key yields its
// default and a warning, never an error. Records that fail validation are
// dropped individually.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tasks := loadCollection(ctx, s, storage.KeyTasks, decodeTasks)
	expenses := loadCollection(ctx, s, storage.KeyExpenses, decodeExpenses)
	theme := s.loadTheme(ctx)

	s.mu.Lock()
	s.tasks = tasks
	s.expenses = expenses
	s.theme = theme
	s.revision++
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Records loaded",
		applog.FieldOperation, applog.OpLoad,
		"tasks", len(tasks),
		"expenses", len(expenses))
	return nil
}

func loadCollection[T any](ctx context.Context, s *Store, key string, decode func([]byte) ([]T, int, error)) []T {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read records, starting empty",
			applog.NewFields().WithKey(key).WithError(err).ToSlice()...)
		return []T{}
	}
	if !found || len(raw) == 0 {
		return []T{}
	}
	items, dropped, err := decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Malformed stored records, starting empty",
			applog.NewFields().WithKey(key).WithError(err).ToSlice()...)
		return []T{}
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped invalid stored records",
			applog.FieldKey, key,
			applog.FieldDropped, dropped)
	}
	return items
}

func decodeTasks(raw []byte) ([]core.Task, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, err
	}
	out := make([]core.Task, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for _, item := range items {
		var t core.Task
		if err := json.Unmarshal(item, &t); err != nil {
			dropped++
			continue
		}
		if !t.Completed {
			t.CompletedAt = nil
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.Category == "" {
			t.Category = core.TaskOther
		}
		if t.Priority == "" {
			t.Priority = core.Medium
		}
		if _, dup := seen[t.ID]; dup || t.Validate() != nil {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, dropped, nil
}

func decodeExpenses(raw []byte) ([]core.Expense, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, err
	}
	out := make([]core.Expense, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for _, item := range items {
		var e core.Expense
		if err := json.Unmarshal(item, &e); err != nil {
			dropped++
			continue
		}
		if e.PaymentMethod == "" {
			e.PaymentMethod = core.Cash
		}
		if _, dup := seen[e.ID]; dup || e.Validate() != nil {
			dropped++
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, dropped, nil
}

func (s *Store) loadTheme(ctx context.Context) core.Theme {
	raw, found, err := s.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read theme, using default",
			applog.NewFields().WithKey(storage.KeyTheme).WithError(err).ToSlice()...)
		return core.LightTheme
	}
	if !found {
		return core.LightTheme
	}
	theme, err := core.ParseTheme(string(raw))
	if err != nil {
		s.logger.WarnContext(ctx, "Unknown stored theme, using default", "value", string(raw))
		return core.LightTheme
	}
	return theme
}

// Tasks returns a deep copy of the task collection, newest insertions first
// unless a sort has been applied.
func (s *Store) Tasks() []core.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Expenses returns a copy of the expense collection.
func (s *Store) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

func (s *Store) Theme() core.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// PendingWrites lists keys whose latest state is not yet durable.
func (s *Store) PendingWrites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pending))
	for k := range s.pending {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SaveTasks writes the task collection and retries any other pending key.
func (s *Store) SaveTasks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, storage.KeyTasks)
}

// SaveExpenses writes the expense collection and retries any other pending key.
func (s *Store) SaveExpenses(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, storage.KeyExpenses)
}

// UpdateTasks applies fn to the collection under the store lock. fn returns
// the new collection and a description of the change; a nil change means
// nothing happened and nothing is written. The result is persisted before
// UpdateTasks returns. A failed write is logged and retried later, so only
// fn's own error is returned.
func (s *Store) UpdateTasks(ctx context.Context, fn func([]core.Task) ([]core.Task, *Change, error)) error {
	s.mu.Lock()
	next, change, err := fn(s.tasks)
	if err != nil || change == nil {
		s.mu.Unlock()
		return err
	}
	s.tasks = next
	c := s.commitLocked(ctx, storage.KeyTasks, CollectionTasks, change)
	s.mu.Unlock()

	s.notify(ctx, c)
	return nil
}

// UpdateExpenses is UpdateTasks for the expense collection.
func (s *Store) UpdateExpenses(ctx context.Context, fn func([]core.Expense) ([]core.Expense, *Change, error)) error {
	s.mu.Lock()
	next, change, err := fn(s.expenses)
	if err != nil || change == nil {
		s.mu.Unlock()
		return err
	}
	s.expenses = next
	c := s.commitLocked(ctx, storage.KeyExpenses, CollectionExpenses, change)
	s.mu.Unlock()

	s.notify(ctx, c)
	return nil
}

// SetTheme stores the display theme preference.
func (s *Store) SetTheme(ctx context.Context, theme core.Theme) error {
	if !theme.Valid() {
		return &core.ValidationError{Field: "theme", Err: core.ErrInvalidTheme}
	}
	s.mu.Lock()
	if s.theme == theme {
		s.mu.Unlock()
		return nil
	}
	s.theme = theme
	c := s.commitLocked(ctx, storage.KeyTheme, CollectionTheme, &Change{Action: ActionSet, ID: string(theme)})
	s.mu.Unlock()

	s.notify(ctx, c)
	return nil
}

// Close flushes pending writes. It returns a *core.StorageError when a key
// still cannot be written; the backend itself is closed by its owner.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	err := s.flushPendingLocked(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Pending writes lost at shutdown",
			applog.NewFields().WithOperation(applog.OpFlush).WithError(err).ToSlice()...)
	}
	return err
}

func (s *Store) commitLocked(ctx context.Context, key, collection string, change *Change) Change {
	s.revision++
	c := *change
	c.Collection = collection
	c.Revision = s.revision
	c.Timestamp = s.clock()
	if err := s.saveLocked(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Change kept in memory, write will be retried",
			applog.NewFields().WithKey(key).WithRecord(collection, c.ID).WithError(err).ToSlice()...)
	}
	return c
}

// saveLocked marks key pending and flushes every pending key. It reports the
// error for key itself, if any.
func (s *Store) saveLocked(ctx context.Context, key string) error {
	s.pending[key] = struct{}{}
	var keyErr error
	for _, k := range sortedKeys(s.pending) {
		if err := s.writeLocked(ctx, k); err != nil {
			if k == key {
				keyErr = err
			}
			continue
		}
		delete(s.pending, k)
	}
	return keyErr
}

func (s *Store) flushPendingLocked(ctx context.Context) error {
	var errs []error
	for _, k := range sortedKeys(s.pending) {
		if err := s.writeLocked(ctx, k); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.pending, k)
	}
	return errors.Join(errs...)
}

func (s *Store) writeLocked(ctx context.Context, key string) error {
	var (
		data []byte
		err  error
	)
	switch key {
	case storage.KeyTasks:
		data, err = json.Marshal(s.tasks)
	case storage.KeyExpenses:
		data, err = json.Marshal(s.expenses)
	case storage.KeyTheme:
		data = []byte(s.theme)
	default:
		err = fmt.Errorf("unknown key %q", key)
	}
	if err == nil {
		err = s.kv.Set(ctx, key, data)
	}
	if err != nil {
		return &core.StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (s *Store) notify(ctx context.Context, c Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyChange(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change",
			applog.NewFields().WithOperation(applog.OpNotify).WithRecord(c.Collection, c.ID).WithError(err).ToSlice()...)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
