// Package http wires the application's routes, middleware, and handlers.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tally/internal/auth"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/storage"
)

type Server struct {
	http.Server
	repo     *storage.Repository
	tokens   *auth.TokenManager
	notifier *services.Notifier

	rateLimiter *rateLimiter

	// Per-user dashboard aggregates, invalidated on every mutation.
	overviewCache *cache.LRU[core.MonthOverview]

	shutdownOnce sync.Once
}

func NewServer(addr string, repo *storage.Repository, tokens *auth.TokenManager, notifier *services.Notifier) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		repo:          repo,
		tokens:        tokens,
		notifier:      notifier,
		rateLimiter:   newRateLimiter(),
		overviewCache: cache.NewLRU[core.MonthOverview](200, 5*time.Minute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /register", s.public(s.handleRegister))
	mux.HandleFunc("GET /login", s.public(handleLoginPrompt))
	mux.HandleFunc("POST /login", s.public(s.handleLogin))
	mux.HandleFunc("POST /logout", s.public(s.handleLogout))

	mux.HandleFunc("GET /dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /overview", s.protected(s.handleMonthlyOverview))
	mux.HandleFunc("GET /report", s.protected(s.handleReport))

	mux.HandleFunc("GET /expenses", s.protected(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/pending", s.protected(s.handleListPendingExpenses))
	mux.HandleFunc("POST /expenses", s.protected(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses/{id}", s.protected(s.handleGetExpense))
	mux.HandleFunc("POST /expenses/{id}", s.protected(s.handleUpdateExpense))
	mux.HandleFunc("POST /expenses/{id}/delete", s.protected(s.handleDeleteExpense))
	mux.HandleFunc("GET /expenses/export", s.protected(s.handleExportExpenses))

	mux.HandleFunc("GET /categories", s.protected(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("POST /categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("POST /categories/{id}/delete", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /recurring", s.protected(s.handleListRecurring))
	mux.HandleFunc("POST /recurring", s.protected(s.handleCreateRecurring))
	mux.HandleFunc("POST /recurring/{id}", s.protected(s.handleUpdateRecurring))
	mux.HandleFunc("POST /recurring/{id}/delete", s.protected(s.handleDeleteRecurring))

	mux.HandleFunc("GET /budgets", s.protected(s.handleListBudgets))
	mux.HandleFunc("POST /budgets", s.protected(s.handleSetBudget))
	mux.HandleFunc("POST /budgets/add", s.protected(s.handleCreateBudget))
	mux.HandleFunc("POST /budgets/{id}", s.protected(s.handleUpdateBudget))
	mux.HandleFunc("POST /budgets/{id}/delete", s.protected(s.handleDeleteBudget))

	mux.HandleFunc("GET /goals", s.protected(s.handleListGoals))
	mux.HandleFunc("POST /goals", s.protected(s.handleCreateGoal))
	mux.HandleFunc("POST /goals/{id}", s.protected(s.handleUpdateGoal))
	mux.HandleFunc("POST /goals/{id}/delete", s.protected(s.handleDeleteGoal))

	mux.HandleFunc("GET /notifications", s.protected(s.handleListNotifications))
	mux.HandleFunc("POST /notifications/{id}/toggle", s.protected(s.handleToggleNotification))
	mux.HandleFunc("POST /notifications/read-all", s.protected(s.handleMarkAllNotificationsRead))

	mux.HandleFunc("GET /profile", s.protected(s.handleGetProfile))
	mux.HandleFunc("POST /profile", s.protected(s.handleUpdateProfile))

	return s
}

// public applies the base middleware without requiring a session.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(next)
}

// protected requires a valid session on top of the base middleware.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.requireUser(next))
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
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
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateUserCaches drops every cached aggregate for the user. Called by
// all mutating handlers so reads never serve stale numbers.
func (s *Server) invalidateUserCaches(userID int64) {
	s.overviewCache.DeletePrefix(userCachePrefix(userID))
}

func userCachePrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}

// Shutdown stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
