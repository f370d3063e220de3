package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/expensio/expense-docai/internal/assets"
	"github.com/expensio/expense-docai/internal/async"
	"github.com/expensio/expense-docai/internal/export"
	"github.com/expensio/expense-docai/internal/repository"
)

// Server holds the HTTP surface for the review/approval workflow.
type Server struct {
	expenses repository.ExpenseRepository
	store    *assets.Store
	queue    async.Queue
	exporter *export.Service
	logger   *slog.Logger
}

func New(expenses repository.ExpenseRepository, store *assets.Store, queue async.Queue, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		expenses: expenses,
		store:    store,
		queue:    queue,
		exporter: exporter,
		logger:   logger,
	}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/expenses", func(r chi.Router) {
		r.Post("/", s.handleUploadReceipt)
		r.Get("/", s.handleListExpenses)
		r.Get("/export", s.handleExport)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetExpense)
			r.Post("/approve", s.handleApprove)
			r.Post("/reject", s.handleReject)
			r.Put("/line-items/{index}", s.handleUpdateLineItem)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
