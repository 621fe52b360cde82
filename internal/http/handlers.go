package http

import (
	"fmt"
	"net/http"
	"strconv"

	"prodhub/internal/app"
	"prodhub/internal/core"
	"prodhub/internal/export"
	applog "prodhub/internal/log"
	"prodhub/internal/services"
)

type healthBody struct {
	Status         string `json:"status"`
	Revision       uint64 `json:"revision"`
	PendingWrites  int    `json:"pendingWrites"`
	TotalRequests  int64  `json:"totalRequests"`
	FailedRequests int64  `json:"failedRequests"`
	RateLimited    int64  `json:"rateLimited"`
	ActiveClients  int    `json:"activeClients"`
}

type expenseList struct {
	Expenses     []core.Expense `json:"expenses"`
	WeeklyTotal  core.Money     `json:"weeklyTotal"`
	MonthlyTotal core.Money     `json:"monthlyTotal"`
}

type sortRequest struct {
	Key string `json:"key"`
}

type themeBody struct {
	Theme core.Theme `json:"theme"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, healthBody{
		Status:         "ok",
		Revision:       s.hub.Store().Revision(),
		PendingWrites:  len(s.hub.Store().PendingWrites()),
		TotalRequests:  m.TotalRequests,
		FailedRequests: m.FailedRequests,
		RateLimited:    s.limiter.Rejected(),
		ActiveClients:  s.limiter.ActiveClients(),
	})
}

// handleReady reports 503 while any collection has an unpersisted change.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if pending := s.hub.Store().PendingWrites(); len(pending) > 0 {
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error: "pending writes: " + strconv.Itoa(len(pending)),
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, status int, cmd app.Command) {
	res, err := s.hub.Dispatch(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, res)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := s.hub.Tasks().Query(services.TaskQuery{
		Filter:   q.Get("filter"),
		Priority: q.Get("priority"),
		Search:   q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in core.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.dispatch(w, r, http.StatusCreated, app.Command{Action: app.AddTask, Task: in})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.ToggleTask, ID: r.PathValue("id")})
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.EditTask, ID: r.PathValue("id")})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.DeleteTask, ID: r.PathValue("id")})
}

// handleSortTasks reorders the stored tasks and returns them in the new order.
func (s *Server) handleSortTasks(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cmd := app.Command{Action: app.SortTasks, SortKey: core.ParseSortKey(req.Key)}
	if _, err := s.hub.Dispatch(r.Context(), cmd); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.hub.Tasks().List())
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	svc := s.hub.Expenses()
	expenses, err := svc.Query(services.ExpenseQuery{
		Category: q.Get("category"),
		Period:   q.Get("period"),
		Search:   q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseList{
		Expenses:     expenses,
		WeeklyTotal:  svc.WeeklyTotal(),
		MonthlyTotal: svc.MonthlyTotal(),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	s.dispatch(w, r, http.StatusCreated, app.Command{Action: app.AddExpense, Expense: in})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.EditExpense, ID: r.PathValue("id")})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.DeleteExpense, ID: r.PathValue("id")})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Dashboard(r.Context()))
}

// handleDownloadExport streams the snapshot as an attachment without touching
// the export directory.
func (s *Server) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	snap := export.New(s.hub.Store())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.FileName()))
	if err := snap.Encode(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export download failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
	}
}

// handleExport writes the snapshot into the configured export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, app.Command{Action: app.ExportData})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: s.hub.Store().Theme()})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.hub.Dispatch(r.Context(), app.Command{Action: app.SetTheme, Theme: req.Theme}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: s.hub.Store().Theme()})
}

// handleAction runs any command from the action table.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var cmd app.Command
	if err := decodeJSON(w, r, &cmd); err != nil {
		writeError(w, r, err)
		return
	}
	action, err := app.ParseAction(string(cmd.Action))
	if err != nil {
		writeError(w, r, err)
		return
	}
	cmd.Action = action
	s.dispatch(w, r, http.StatusOK, cmd)
}
