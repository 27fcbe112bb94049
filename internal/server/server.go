// Package server exposes the site, the authoring API and the editor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/site"
)

type Server struct {
	site      *site.Site
	staticDir string
	now       func() time.Time
}

type Option func(*Server)

// WithStaticDir serves files from dir for paths no route matches, mirroring
// how the build copies them into the output root.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

func New(st *site.Site, opts ...Option) *Server {
	s := &Server{site: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes configures all routes and returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", s.page)
	r.Get("/blog", s.page)
	r.Get("/blog/{slug}", s.page)
	r.Get("/tutorials", s.page)
	r.Get("/tutorials/{category}/{slug}", s.page)

	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/robots.txt", s.robots)
	r.Get("/static/chroma.css", s.chromaCSS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/blog/save", s.saveBlogPost)
		r.Post("/preview", s.preview)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	r.Get("/admin/editor", s.editor)
	r.Post("/admin/editor", s.editorSave)

	r.NotFound(s.static)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving site", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
