package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"prodhub/internal/core"
	applog "prodhub/internal/log"
	"prodhub/internal/store"
)

// TaskService implements the task operations against the record store.
type TaskService struct {
	store  *store.Store
	newID  func() string
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	newID  func() string
	logger *slog.Logger
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{newID: uuid.NewString, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func NewTaskService(st *store.Store, opts ...Option) *TaskService {
	o := buildOptions(opts)
	return &TaskService{store: st, newID: o.newID, logger: o.logger}
}

// Add validates the input and inserts the new task at the front of the collection.
func (s *TaskService) Add(ctx context.Context, in core.TaskInput) (core.Task, error) {
	task, err := in.Build(s.newID(), s.store.Now())
	if err != nil {
		return core.Task{}, err
	}

	err = s.store.UpdateTasks(ctx, func(tasks []core.Task) ([]core.Task, *store.Change, error) {
		next := make([]core.Task, 0, len(tasks)+1)
		next = append(next, task)
		next = append(next, tasks...)
		return next, &store.Change{Action: store.ActionCreated, ID: task.ID}, nil
	})
	if err != nil {
		return core.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.logger.InfoContext(ctx, "Task created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldRecordID, task.ID,
		applog.FieldCategory, task.Category)
	return task.Clone(), nil
}

// Toggle flips the completion state of the task with id. Completing sets
// CompletedAt to now; reopening clears it.
func (s *TaskService) Toggle(ctx context.Context, id string) (core.Task, error) {
	now := s.store.Now()
	var out core.Task
	err := s.store.UpdateTasks(ctx, func(tasks []core.Task) ([]core.Task, *store.Change, error) {
		i := indexOfTask(tasks, id)
		if i < 0 {
			return nil, nil, &core.NotFoundError{Kind: "task", ID: id}
		}
		next := append([]core.Task(nil), tasks...)
		t := next[i]
		t.Completed = !t.Completed
		if t.Completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
		next[i] = t
		out = t.Clone()
		return next, &store.Change{Action: store.ActionToggled, ID: id}, nil
	})
	if err != nil {
		return core.Task{}, err
	}
	return out, nil
}

// Delete removes the task with id. Unknown ids are a no-op.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.store.UpdateTasks(ctx, func(tasks []core.Task) ([]core.Task, *store.Change, error) {
		i := indexOfTask(tasks, id)
		if i < 0 {
			return tasks, nil, nil
		}
		next := make([]core.Task, 0, len(tasks)-1)
		next = append(next, tasks[:i]...)
		next = append(next, tasks[i+1:]...)
		return next, &store.Change{Action: store.ActionDeleted, ID: id}, nil
	})
}

// Edit is not supported yet.
func (s *TaskService) Edit(_ context.Context, _ string) error {
	return core.ErrNotImplemented
}

// Sort reorders the stored collection by key and persists the new order.
func (s *TaskService) Sort(ctx context.Context, key core.SortKey) error {
	sorter := GetTaskSorter(key)
	return s.store.UpdateTasks(ctx, func(tasks []core.Task) ([]core.Task, *store.Change, error) {
		next := append([]core.Task(nil), tasks...)
		sorter.Sort(next)
		return next, &store.Change{Action: store.ActionSorted, ID: string(key)}, nil
	})
}

// List returns every task in stored order.
func (s *TaskService) List() []core.Task {
	return s.store.Tasks()
}

// Filter returns the derived view for f without changing stored order.
func (s *TaskService) Filter(f core.TaskFilter) ([]core.Task, error) {
	m, err := GetTaskMatcher(f)
	if err != nil {
		return nil, err
	}
	now := s.store.Now()
	return keepTasks(s.store.Tasks(), func(t core.Task) bool { return m.Match(t, now) }), nil
}

// FilterByPriority keeps tasks of exactly the given priority; "all" keeps everything.
func (s *TaskService) FilterByPriority(priority string) ([]core.Task, error) {
	priority = strings.TrimSpace(priority)
	if priority == "" || strings.EqualFold(priority, core.All) {
		return s.store.Tasks(), nil
	}
	p, err := core.ParsePriority(priority)
	if err != nil {
		return nil, &core.ValidationError{Field: "priority", Err: err}
	}
	return keepTasks(s.store.Tasks(), func(t core.Task) bool { return t.Priority == p }), nil
}

// Search matches query case-insensitively against title, category and tags.
// A blank query returns every task.
func (s *TaskService) Search(query string) []core.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	tasks := s.store.Tasks()
	if q == "" {
		return tasks
	}
	return keepTasks(tasks, func(t core.Task) bool {
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(string(t.Category), q) {
			return true
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

func indexOfTask(tasks []core.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func keepTasks(tasks []core.Task, keep func(core.Task) bool) []core.Task {
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
