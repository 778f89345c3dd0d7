// Package server exposes a loaded hive over a read-only JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joshuapare/hiverecon/internal/config"
	"github.com/joshuapare/hiverecon/internal/logger"
	"github.com/joshuapare/hiverecon/pkg/hive"
	"github.com/joshuapare/hiverecon/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Server serves queries against the session's current hive.
type Server struct {
	httpAddr string
	engine   *chi.Mux
	session  *hive.Session
	defaults types.LoadOptions
	log      *slog.Logger
}

// NewServer builds the router. Loads requested over the API start from the
// configured parse options.
func NewServer(cfg *config.Config, session *hive.Session) *Server {
	s := &Server{
		httpAddr: cfg.Listen,
		engine:   chi.NewRouter(),
		session:  session,
		defaults: cfg.LoadOptions(),
		log:      logger.L.With("component", "server"),
	}
	s.defaults.Logger = s.log
	s.engine.Use(middleware.Logger)
	s.engine.Use(middleware.Recoverer)
	s.registerRoutes()
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.httpAddr }

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.httpAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.httpAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.Get("/health", s.health)
	s.engine.Post("/hive", s.loadHive)

	s.engine.Group(func(r chi.Router) {
		r.Use(s.requireHive)
		r.Get("/hive/info", s.info)
		r.Get("/hive/stats", s.stats)
		r.Get("/hive/diagnostics", s.diagnostics)
		r.Get("/keys/root", s.rootKey)
		r.Get("/keys", s.keyByPath)
		r.Get("/keys/offset/{offset}", s.keyByOffset)
		r.Get("/deleted", s.deleted)
		r.Get("/search/size", s.searchSize)
		r.Get("/search/time", s.searchTime)
		r.Get("/search/expand", s.searchExpand)
		r.Get("/search/{kind}", s.searchText)
		r.Get("/export", s.export)
	})
}
