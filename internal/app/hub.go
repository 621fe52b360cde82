// Package app wires the store, the record services and the statistics engine
// behind a single typed dispatch table.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"prodhub/internal/cache"
	"prodhub/internal/core"
	"prodhub/internal/export"
	applog "prodhub/internal/log"
	"prodhub/internal/services"
	"prodhub/internal/stats"
	"prodhub/internal/store"
)

const (
	dashboardCacheSize = 8
	dashboardCacheTTL  = time.Minute
)

// Command is the input of one dispatched action. Only the fields relevant to
// the action are read.
type Command struct {
	Action  Action            `json:"action"`
	ID      string            `json:"id,omitempty"`
	Task    core.TaskInput    `json:"task"`
	Expense core.ExpenseInput `json:"expense"`
	SortKey core.SortKey      `json:"sortKey,omitempty"`
	Theme   string            `json:"theme,omitempty"`
}

// Result reports what an action produced. Message is the user-facing
// confirmation, empty when the action has none.
type Result struct {
	Action  Action        `json:"action"`
	Message string        `json:"message,omitempty"`
	Task    *core.Task    `json:"task,omitempty"`
	Expense *core.Expense `json:"expense,omitempty"`
	Path    string        `json:"path,omitempty"`
}

type handler func(ctx context.Context, cmd Command) (Result, error)

type Option func(*options)

type options struct {
	exportDir   string
	logger      *slog.Logger
	serviceOpts []services.Option
}

// WithExportDir sets where export-data writes its file.
func WithExportDir(dir string) Option {
	return func(o *options) { o.exportDir = dir }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithServiceOptions forwards options to both record services.
func WithServiceOptions(opts ...services.Option) Option {
	return func(o *options) { o.serviceOpts = append(o.serviceOpts, opts...) }
}

// Hub owns the store and everything derived from it for one process.
type Hub struct {
	store     *store.Store
	tasks     *services.TaskService
	expenses  *services.ExpenseService
	engine    *stats.Engine
	dashboard *cache.LRUCache[stats.Dashboard]
	exportDir string
	logger    *slog.Logger
	handlers  map[Action]handler
}

func New(st *store.Store, engine *stats.Engine, opts ...Option) *Hub {
	o := options{exportDir: ".", logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(applog.FieldComponent, applog.ComponentApp)
	svcOpts := append([]services.Option{services.WithLogger(o.logger)}, o.serviceOpts...)

	h := &Hub{
		store:     st,
		tasks:     services.NewTaskService(st, svcOpts...),
		expenses:  services.NewExpenseService(st, svcOpts...),
		engine:    engine,
		dashboard: cache.NewLRUCache[stats.Dashboard](dashboardCacheSize, dashboardCacheTTL, cache.WithClock(st.Now)),
		exportDir: o.exportDir,
		logger:    logger,
	}
	h.handlers = map[Action]handler{
		AddTask:       h.addTask,
		ToggleTask:    h.toggleTask,
		DeleteTask:    h.deleteTask,
		EditTask:      h.editTask,
		SortTasks:     h.sortTasks,
		AddExpense:    h.addExpense,
		DeleteExpense: h.deleteExpense,
		EditExpense:   h.editExpense,
		ExportData:    h.exportData,
		SetTheme:      h.setTheme,
	}
	return h
}

func (h *Hub) Store() *store.Store                { return h.store }
func (h *Hub) Tasks() *services.TaskService       { return h.tasks }
func (h *Hub) Expenses() *services.ExpenseService { return h.expenses }
func (h *Hub) Engine() *stats.Engine              { return h.engine }

// Dispatch runs the handler registered for cmd.Action.
func (h *Hub) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	fn, ok := h.handlers[cmd.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	res, err := fn(ctx, cmd)
	if err != nil {
		h.logger.DebugContext(ctx, "Action failed",
			applog.FieldOperation, cmd.Action.String(),
			applog.FieldError, err)
		return Result{Action: cmd.Action}, err
	}
	res.Action = cmd.Action
	return res, nil
}

// Dashboard returns the statistics for the current state. Results are cached
// per store revision and calendar day.
func (h *Hub) Dashboard(ctx context.Context) stats.Dashboard {
	now := h.engine.Now()
	key := fmt.Sprintf("%d/%s", h.store.Revision(), core.DateOf(now))
	if d, ok := h.dashboard.Get(key); ok {
		return d
	}
	d := h.engine.Dashboard(h.store.Tasks(), h.store.Expenses())
	h.dashboard.Set(key, d)
	h.logger.DebugContext(ctx, "Dashboard computed",
		applog.FieldRevision, h.store.Revision(),
		"score", d.Productivity)
	return d
}

// Close flushes pending writes.
func (h *Hub) Close(ctx context.Context) error {
	h.dashboard.Purge()
	return h.store.Close(ctx)
}

func (h *Hub) addTask(ctx context.Context, cmd Command) (Result, error) {
	t, err := h.tasks.Add(ctx, cmd.Task)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Task added successfully", Task: &t}, nil
}

func (h *Hub) toggleTask(ctx context.Context, cmd Command) (Result, error) {
	t, err := h.tasks.Toggle(ctx, cmd.ID)
	if err != nil {
		return Result{}, err
	}
	msg := "Task marked as pending"
	if t.Completed {
		msg = "Task completed!"
	}
	return Result{Message: msg, Task: &t}, nil
}

func (h *Hub) deleteTask(ctx context.Context, cmd Command) (Result, error) {
	if err := h.tasks.Delete(ctx, cmd.ID); err != nil {
		return Result{}, err
	}
	return Result{Message: "Task deleted successfully"}, nil
}

func (h *Hub) editTask(ctx context.Context, cmd Command) (Result, error) {
	return Result{}, h.tasks.Edit(ctx, cmd.ID)
}

func (h *Hub) sortTasks(ctx context.Context, cmd Command) (Result, error) {
	return Result{}, h.tasks.Sort(ctx, core.ParseSortKey(string(cmd.SortKey)))
}

func (h *Hub) addExpense(ctx context.Context, cmd Command) (Result, error) {
	e, err := h.expenses.Add(ctx, cmd.Expense)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Expense added successfully", Expense: &e}, nil
}

func (h *Hub) deleteExpense(ctx context.Context, cmd Command) (Result, error) {
	if err := h.expenses.Delete(ctx, cmd.ID); err != nil {
		return Result{}, err
	}
	return Result{Message: "Expense deleted successfully"}, nil
}

func (h *Hub) editExpense(ctx context.Context, cmd Command) (Result, error) {
	return Result{}, h.expenses.Edit(ctx, cmd.ID)
}

func (h *Hub) exportData(ctx context.Context, _ Command) (Result, error) {
	path, err := export.New(h.store).WriteFile(h.exportDir)
	if err != nil {
		return Result{}, fmt.Errorf("export data: %w", err)
	}
	h.logger.InfoContext(ctx, "Data exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldPath, path)
	return Result{Message: "Data exported successfully", Path: path}, nil
}

func (h *Hub) setTheme(ctx context.Context, cmd Command) (Result, error) {
	theme, err := core.ParseTheme(cmd.Theme)
	if err != nil {
		return Result{}, &core.ValidationError{Field: "theme", Err: err}
	}
	if err := h.store.SetTheme(ctx, theme); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
