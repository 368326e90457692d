// Package server exposes the todo store over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/store"
)

// Server is the todo API server.
type Server struct {
	cfg    model.AppConfig
	store  store.Store
	log    logrus.FieldLogger
	router chi.Router
	http   *http.Server
}

// New builds a server backed by st. The router is ready to use through
// Handler before Start is called.
func New(cfg model.AppConfig, st store.Store, log logrus.FieldLogger) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		log:   logging.Component(log, "server"),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until the server
// stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("api server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("api server shutting down")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) routes() chi.Router {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(s.log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.cfg.Server.RequestTimeout > 0 {
		mux.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	mux.Use(middleware.StripSlashes)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, NewNotFoundError("Route", nil), "")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Message:   "Method not allowed",
			ErrorCode: CodeMethodNotAllowed,
		})
	})

	mux.Get("/", s.handleRoot)
	mux.Get("/health", s.handleHealth)

	mux.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.handleListTodos)
			r.Post("/", s.handleCreateTodo)
			r.Get("/summary", s.handleTodoSummary)
			r.Get("/search", s.handleSearchTodos)
			r.Get("/{todoID}", s.handleGetTodo)
			r.Put("/{todoID}", s.handleUpdateTodo)
			r.Patch("/{todoID}/complete", s.handleSetTodoCompletion)
			r.Delete("/{todoID}", s.handleDeleteTodo)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/with-counts", s.handleListCategoriesWithCounts)
			r.Get("/{categoryID}", s.handleGetCategory)
			r.Put("/{categoryID}", s.handleUpdateCategory)
			r.Delete("/{categoryID}", s.handleDeleteCategory)
		})
	})

	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("health check: database unavailable")
		writeJSON(w, http.StatusServiceUnavailable, model.Health{
			Status:  "unavailable",
			Version: s.cfg.App.Version,
		})
		return
	}
	writeJSON(w, http.StatusOK, model.Health{Status: "ok", Version: s.cfg.App.Version})
}
