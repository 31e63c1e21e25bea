// Package web exposes the matching engine and reference cache over a
// small HTTP API for door controllers and operator tooling.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/detector"
	"github.com/kozaktomas/facegate/internal/facematch"
	"github.com/kozaktomas/facegate/internal/refcache"
	"github.com/kozaktomas/facegate/internal/web/handlers"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server. The refresher and detector may
// be nil when the deployment runs from a disk snapshot without an
// enrollment database or camera pipeline.
func NewServer(
	cfg *config.Config,
	host string,
	port int,
	scorer *facematch.Scorer,
	holder *refcache.Holder,
	refresher *refcache.Refresher,
	det detector.Detector,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config: cfg,
		router: r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	s.setupRoutes(scorer, holder, refresher, det)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(
	scorer *facematch.Scorer,
	holder *refcache.Holder,
	refresher *refcache.Refresher,
	det detector.Detector,
) {
	matchHandler := handlers.NewMatchHandler(scorer, holder, det, s.config.Cache.ShortlistK)
	cacheHandler := handlers.NewCacheHandler(holder, refresher)
	identitiesHandler := handlers.NewIdentitiesHandler(holder)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", matchHandler.Match)
		r.Post("/match/image", matchHandler.MatchImage)

		r.Get("/cache", cacheHandler.Status)
		r.Post("/cache/refresh", cacheHandler.Refresh)

		r.Get("/identities", identitiesHandler.List)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
