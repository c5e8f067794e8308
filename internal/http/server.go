// Package http exposes the JSON API and the report endpoints. Reads of
// dashboard data come from the reconciler's live view; mutations go
// through the service layer.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"budgetflow/internal/log"
	"budgetflow/internal/reconcile"
	"budgetflow/internal/services"
	"budgetflow/internal/store"
)

// ViewSource supplies the current reconciled dashboard view.
type ViewSource interface {
	View() *reconcile.View
}

var _ ViewSource = (*reconcile.Reconciler)(nil)

type Server struct {
	http.Server

	categories *services.CategoryService
	funders    *services.FunderService
	expenses   *services.ExpenseService
	budget     store.BudgetStore
	views      ViewSource

	rateLimiter  *rateLimiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

func NewServer(addr string,
	categories *services.CategoryService,
	funders *services.FunderService,
	expenses *services.ExpenseService,
	budget store.BudgetStore,
	views ViewSource,
	logger *log.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		categories:  categories,
		funders:     funders,
		expenses:    expenses,
		budget:      budget,
		views:       views,
		rateLimiter: newRateLimiter(),
		logger:      logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", s.wrap(s.handleGetCategory))
	mux.HandleFunc("PATCH /api/categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/funders", s.wrap(s.handleListFunders))
	mux.HandleFunc("POST /api/funders", s.wrap(s.handleCreateFunder))
	mux.HandleFunc("GET /api/funders/{id}", s.wrap(s.handleGetFunder))
	mux.HandleFunc("PATCH /api/funders/{id}", s.wrap(s.handleUpdateFunder))
	mux.HandleFunc("DELETE /api/funders/{id}", s.wrap(s.handleDeleteFunder))

	mux.HandleFunc("GET /api/expenses", s.wrap(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.wrap(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.wrap(s.handleGetExpense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.wrap(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.wrap(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/dashboard", s.wrap(s.handleDashboard))
	mux.HandleFunc("GET /api/budget", s.wrap(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budget", s.wrap(s.handlePutBudget))

	mux.HandleFunc("GET /report", s.wrap(s.handleReportHTML))
	mux.HandleFunc("GET /report.pdf", s.wrap(s.handleReportPDF))

	return s
}

// Shutdown stops the rate limiter's cleanup goroutine along with the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds request id, security headers, mutation rate limiting, and
// request logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the reconciler has produced a view.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.views == nil || s.views.View() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// rate limiter: 60 mutations per client per minute.

type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
