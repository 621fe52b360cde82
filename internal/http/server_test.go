package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodhub/internal/app"
	"prodhub/internal/core"
	"prodhub/internal/export"
	applog "prodhub/internal/log"
	"prodhub/internal/services"
	"prodhub/internal/stats"
	"prodhub/internal/storage/memory"
	"prodhub/internal/store"
)

var baseNow = time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, perMinute int) (*Server, *memory.KV, string) {
	t.Helper()
	clock := func() time.Time { return baseNow }
	kv := memory.New()
	st := store.New(kv, store.WithClock(clock), store.WithLocation(time.UTC))
	require.NoError(t, st.Load(context.Background()))
	engine := stats.NewEngine(core.MustMoney("2000"), stats.WithClock(clock), stats.WithLocation(time.UTC))

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	dir := t.TempDir()
	hub := app.New(st, engine,
		app.WithExportDir(dir),
		app.WithServiceOptions(services.WithIDGenerator(ids)))

	srv := NewServer(hub, Config{
		Addr:              "127.0.0.1:0",
		RequestsPerMinute: perMinute,
		Logger:            applog.New(applog.Config{Output: io.Discard}),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, kv, dir
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, kv, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[healthBody](t, rr).Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", rr.Body.String())

	kv.FailWrites(errors.New("disk full"))
	rr = do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Survives in memory"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, 1, decode[healthBody](t, do(t, srv, http.MethodGet, "/healthz", "")).PendingWrites)
}

func TestTaskEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodPost, "/api/tasks", `{"title":" Write report ","priority":"high","tags":"q2, docs"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[app.Result](t, rr)
	assert.Equal(t, "Task added successfully", res.Message)
	require.NotNil(t, res.Task)
	assert.Equal(t, "Write report", res.Task.Title)
	assert.Equal(t, []string{"q2", "docs"}, res.Task.Tags)

	rr = do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Gym","priority":"low"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/tasks/id-1/toggle", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Task completed!", decode[app.Result](t, rr).Message)

	rr = do(t, srv, http.MethodGet, "/api/tasks?filter=completed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	tasks := decode[[]core.Task](t, rr)
	require.Len(t, tasks, 1)
	assert.Equal(t, "id-1", tasks[0].ID)

	rr = do(t, srv, http.MethodGet, "/api/tasks?priority=low&q=gym", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.Task](t, rr), 1)

	rr = do(t, srv, http.MethodPost, "/api/tasks/sort", `{"key":"alphabetical"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks = decode[[]core.Task](t, rr)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Gym", tasks[0].Title)

	rr = do(t, srv, http.MethodDelete, "/api/tasks/id-2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Task deleted successfully", decode[app.Result](t, rr).Message)
	assert.Len(t, srv.hub.Tasks().List(), 1)
}

func TestTaskEndpoints_Errors(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{"blank title", http.MethodPost, "/api/tasks", `{"title":"  "}`, http.StatusUnprocessableEntity, "Task description is required"},
		{"bad priority", http.MethodPost, "/api/tasks", `{"title":"x","priority":"asap"}`, http.StatusUnprocessableEntity, ""},
		{"unknown field", http.MethodPost, "/api/tasks", `{"name":"x"}`, http.StatusBadRequest, ""},
		{"empty body", http.MethodPost, "/api/tasks", "", http.StatusBadRequest, ""},
		{"toggle unknown", http.MethodPost, "/api/tasks/nope/toggle", "", http.StatusNotFound, "The selected item no longer exists"},
		{"edit", http.MethodPut, "/api/tasks/id-1", "", http.StatusNotImplemented, "This feature is coming soon!"},
		{"bad filter", http.MethodGet, "/api/tasks?filter=someday", "", http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decode[errorBody](t, rr)
			assert.NotEmpty(t, body.Error)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body.Error)
			}
		})
	}
	assert.Empty(t, srv.hub.Tasks().List())
}

func TestExpenseEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Coffee","amount":"3.50","category":"food"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[app.Result](t, rr)
	assert.Equal(t, "Expense added successfully", res.Message)
	require.NotNil(t, res.Expense)
	assert.Equal(t, "2024-06-05", res.Expense.Date.String())

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Flight","amount":"120","category":"travel","date":"2024-01-15"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/expenses?period=month", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[expenseList](t, rr)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Coffee", list.Expenses[0].Description)
	assert.Equal(t, "3.50", list.MonthlyTotal.String())

	rr = do(t, srv, http.MethodGet, "/api/expenses?category=travel&q=flight", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[expenseList](t, rr).Expenses, 1)

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Bad","amount":"-1","category":"food"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Please enter a valid amount", decode[errorBody](t, rr).Error)

	rr = do(t, srv, http.MethodPut, "/api/expenses/id-1", "")
	assert.Equal(t, http.StatusNotImplemented, rr.Code)

	rr = do(t, srv, http.MethodDelete, "/api/expenses/id-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, srv.hub.Expenses().List(), 1)

	rr = do(t, srv, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decode[stats.Dashboard](t, rr)
	assert.Equal(t, "120.00", dash.Expenses.Total.String())
}

func TestCreateAcceptsNumericAmountAndTagArray(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Lunch","amount":12.50,"category":"food","date":"2024-06-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[app.Result](t, rr)
	require.NotNil(t, res.Expense)
	assert.Equal(t, int64(1250), res.Expense.Amount.Cents)

	rr = do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Plan","tags":["a"," b"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res = decode[app.Result](t, rr)
	require.NotNil(t, res.Task)
	assert.Equal(t, []string{"a", "b"}, res.Task.Tags)

	rr = do(t, srv, http.MethodPost, "/api/actions", `{"action":"add-expense","expense":{"description":"Bus","amount":2,"category":"transport"}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, srv.hub.Expenses().List(), 2)

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"description":"Lunch","amount":true,"category":"food"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportEndpoints(t *testing.T) {
	srv, _, dir := newTestServer(t, 60)
	rr := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Backup"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="productivity-hub-data-2024-06-05.json"`, rr.Header().Get("Content-Disposition"))
	snap, err := export.Decode(rr.Body)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Backup", snap.Tasks[0].Title)

	rr = do(t, srv, http.MethodPost, "/api/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[app.Result](t, rr)
	assert.Equal(t, "Data exported successfully", res.Message)
	assert.True(t, strings.HasPrefix(res.Path, dir))
}

func TestThemeEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodGet, "/api/theme", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.LightTheme, decode[themeBody](t, rr).Theme)

	rr = do(t, srv, http.MethodPut, "/api/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.DarkTheme, decode[themeBody](t, rr).Theme)

	rr = do(t, srv, http.MethodPut, "/api/theme", `{"theme":"sepia"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, core.DarkTheme, srv.hub.Store().Theme())
}

func TestActionEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)

	rr := do(t, srv, http.MethodPost, "/api/actions", `{"action":"add-task","task":{"title":"Via action"}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[app.Result](t, rr)
	assert.Equal(t, app.AddTask, res.Action)
	require.NotNil(t, res.Task)

	rr = do(t, srv, http.MethodPost, "/api/actions", `{"action":"toggle-task","id":"`+res.Task.ID+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, srv.hub.Tasks().List()[0].Completed)

	rr = do(t, srv, http.MethodPost, "/api/actions", `{"action":"view-reports"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRateLimitAppliesToMutationsOnly(t *testing.T) {
	srv, _, _ := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rr := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"t"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"t"}`)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Len(t, srv.hub.Tasks().List(), 2)

	rr = do(t, srv, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	h := decode[healthBody](t, do(t, srv, http.MethodGet, "/healthz", ""))
	assert.Equal(t, int64(1), h.RateLimited)
	assert.Equal(t, int64(1), h.FailedRequests)
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, _, _ := newTestServer(t, 60)
	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
}
