package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/model"
)

const maxBodyBytes = 1 << 20

type saveRequest struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// saveBlogPost handles POST /api/blog/save. The content is written verbatim as
// the post file; there is no authentication.
func (s *Server) saveBlogPost(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Debug("invalid save request body", "error", err)
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Slug == "" || req.Content == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !content.ValidSlug(req.Slug) {
		respondError(w, http.StatusBadRequest, "Invalid slug")
		return
	}

	ref := model.Ref{Collection: model.Blog, Slug: req.Slug}
	if err := s.site.Store().Save(ref, []byte(req.Content)); err != nil {
		logger.Error("error saving blog post", "slug", req.Slug, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save blog post")
		return
	}
	s.site.Invalidate()
	logger.Info("saved blog post", "slug", req.Slug)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// preview handles POST /api/preview: markdown in, an HTML fragment out.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	src, err := previewSource(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	respondHTML(w, http.StatusOK, []byte(s.site.Preview([]byte(src))))
}

func previewSource(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("decode preview request: %w", err)
		}
		return req.Content, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return r.FormValue("content"), nil
	default:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return "", fmt.Errorf("read preview request: %w", err)
		}
		return string(b), nil
	}
}

func (s *Server) editor(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, http.StatusOK, "")
}

// editorSave handles the editor form: the title becomes the slug, and the
// post gets front matter with the title, today's date and the first line of
// the content as its description.
func (s *Server) editorSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderEditor(w, http.StatusBadRequest, "Error saving post: invalid form")
		return
	}
	title := strings.TrimSpace(r.PostFormValue("title"))
	body := r.PostFormValue("content")
	if title == "" || strings.TrimSpace(body) == "" {
		s.renderEditor(w, http.StatusBadRequest, "Please fill in both title and content")
		return
	}
	slug := content.Slugify(title)
	if !content.ValidSlug(slug) {
		s.renderEditor(w, http.StatusBadRequest, "Error saving post: the title needs at least one letter or number")
		return
	}

	meta := model.Meta{
		Title:       title,
		Date:        content.Today(s.now()),
		Description: firstLine(body),
	}
	file, err := content.ComposeFile(meta, []byte(body))
	if err == nil {
		err = s.site.Store().Save(model.Ref{Collection: model.Blog, Slug: slug}, file)
	}
	if err != nil {
		logger.Error("error saving blog post from editor", "slug", slug, "error", err)
		s.renderEditor(w, http.StatusInternalServerError, "Error saving post: Failed to save")
		return
	}
	s.site.Invalidate()
	logger.Info("saved blog post from editor", "slug", slug)
	s.renderEditor(w, http.StatusOK, "Saved successfully! /blog/"+slug)
}

func (s *Server) renderEditor(w http.ResponseWriter, status int, message string) {
	page, err := s.site.Editor(message)
	if err != nil {
		logger.Error("failed to render editor", "error", err)
		respondHTML(w, http.StatusInternalServerError, errorPage)
		return
	}
	respondHTML(w, status, page)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
