package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"prodhub/internal/app"
	applog "prodhub/internal/log"
	"prodhub/internal/middleware/ratelimit"
	"prodhub/internal/middleware/security"
	"prodhub/internal/middleware/trace"
)

// maxBodyBytes caps request bodies; records are small.
const maxBodyBytes = 1 << 20

type Config struct {
	Addr string
	// RequestsPerMinute limits mutating requests per client.
	RequestsPerMinute int
	Logger            *applog.Logger
}

// Server exposes the hub as a local JSON API.
type Server struct {
	http.Server
	hub      *app.Hub
	logger   *applog.Logger
	clientIP *security.ClientIP
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(hub *app.Hub, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	clientIP := security.NewClientIP()
	limitCfg := ratelimit.DefaultConfig()
	limitCfg.RequestsPerMinute = cfg.RequestsPerMinute
	limitCfg.Methods = []string{http.MethodPost, http.MethodPut, http.MethodDelete}

	s := &Server{
		hub:      hub,
		logger:   logger,
		clientIP: clientIP,
		limiter:  ratelimit.NewLimiter(limitCfg),
		tracer:   trace.NewMiddleware(logger, clientIP.Extract),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /api/tasks/sort", s.handleSortTasks)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleEditTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/export", s.handleDownloadExport)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /api/actions", s.handleAction)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(clientIP.Extract, s.handleRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		"client_ip", s.clientIP.Extract(r))
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Rate limit exceeded. Please try again later."})
}
