package server

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
)

var (
	notFoundPage = []byte("<!DOCTYPE html>\n<title>Not Found</title>\n<h1>404</h1>\n<p>This page could not be found.</p>\n")
	errorPage    = []byte("<!DOCTYPE html>\n<title>Error</title>\n<h1>500</h1>\n<p>This page could not be rendered.</p>\n")
)

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	body, err := s.site.Page(r.URL.Path)
	switch {
	case errors.Is(err, content.ErrNotFound):
		s.notFound(w, r)
	case err != nil:
		logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		respondHTML(w, http.StatusInternalServerError, errorPage)
	default:
		respondHTML(w, http.StatusOK, body)
	}
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	respondHTML(w, http.StatusNotFound, notFoundPage)
}

// static serves files from the static directory for paths no route claims.
func (s *Server) static(w http.ResponseWriter, r *http.Request) {
	if s.staticDir != "" && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		name := filepath.Join(s.staticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}
	}
	s.notFound(w, r)
}

func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	data, err := s.site.Data()
	if err != nil {
		logger.Warn("sitemap is missing posts that failed to read", "error", err)
	}
	var buf bytes.Buffer
	if err := s.site.Sitemap(&buf, data); err != nil {
		logger.Error("failed to write sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.site.Robots()))
}

func (s *Server) chromaCSS(w http.ResponseWriter, r *http.Request) {
	css, err := s.site.StylesCSS()
	if err != nil {
		logger.Error("failed to generate code stylesheet", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(css))
}
