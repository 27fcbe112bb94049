// Package site turns the content store into pages. The same code path serves
// requests and writes the static build, so a route renders identically in both.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/markup"
	"github.com/Bitlatte/portfolio/internal/model"
	"github.com/Bitlatte/portfolio/internal/seo"
)

type Site struct {
	cfg      *config.Config
	store    *content.Store
	renderer *markup.Renderer
	layouts  map[string]*template.Template
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string][]byte
	// bumped by Invalidate; pages rendered under an older generation are not cached
	gen uint64
}

func New(cfg *config.Config, store *content.Store, renderer *markup.Renderer) (*Site, error) {
	layouts, err := parseLayouts()
	if err != nil {
		return nil, err
	}
	return &Site{
		cfg:      cfg,
		store:    store,
		renderer: renderer,
		layouts:  layouts,
		now:      time.Now,
		cache:    make(map[string][]byte),
	}, nil
}

func (s *Site) Config() *config.Config { return s.cfg }

func (s *Site) Store() *content.Store { return s.store }

// Page returns the HTML for route, rendering it on first use. Routes that do
// not name a page yield content.ErrNotFound; unreadable posts a
// *content.ParseError.
func (s *Site) Page(route string) ([]byte, error) {
	route = cleanRoute(route)

	s.mu.RLock()
	page, ok := s.cache[route]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return page, nil
	}

	page, err := s.render(route)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cache[route] = page
	}
	s.mu.Unlock()
	logger.Debug("rendered page", "route", route, "bytes", len(page))
	return page, nil
}

// Invalidate drops every cached page.
func (s *Site) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	clear(s.cache)
}

func cleanRoute(route string) string {
	return path.Clean("/" + route)
}

func (s *Site) render(route string) ([]byte, error) {
	switch route {
	case "/", "/blog", "/tutorials":
		data, err := s.Data()
		if err != nil {
			logger.Warn("some posts could not be read", "route", route, "error", err)
		}
		return s.renderListing(route, data)
	}

	p, err := s.store.Resolve(route)
	if err != nil {
		return nil, err
	}
	return s.renderPost(p, s.siteData(nil, nil))
}

// Data reads both collections. Posts that fail to read are left out and
// reported through the joined error.
func (s *Site) Data() (*model.SiteData, error) {
	blog, blogErr := s.store.Posts(model.Blog)
	tutorials, tutErr := s.store.Posts(model.Tutorials)
	return s.siteData(blog, tutorials), errors.Join(blogErr, tutErr)
}

func (s *Site) siteData(blog, tutorials []*model.Post) *model.SiteData {
	return &model.SiteData{
		Name:        s.cfg.SiteName,
		Description: s.cfg.SiteDescription,
		BaseURL:     s.cfg.BaseURL,
		Posts:       blog,
		Tutorials:   tutorials,
		Categories:  content.GroupByCategory(tutorials),
	}
}

func (s *Site) renderListing(route string, data *model.SiteData) ([]byte, error) {
	var layout, title string
	switch route {
	case "/":
		layout = layoutHome
	case "/blog":
		layout, title = layoutPosts, "Blog"
	case "/tutorials":
		layout, title = layoutTutorials, "Tutorials"
	default:
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, route)
	}

	meta, err := seo.ForPage(s.cfg, title, route)
	if err != nil {
		return nil, err
	}
	return s.execute(layout, meta, &model.PageData{
		PageTitle: title,
		Path:      route,
		Site:      data,
	})
}

// renderPost renders one post page. A body that fails to compile is replaced
// by an inline error so the page chrome still renders.
func (s *Site) renderPost(p *model.Post, data *model.SiteData) ([]byte, error) {
	body, err := s.renderer.Render(p.Body)
	if err != nil {
		logger.Error("failed to render post body", "path", p.SourcePath, "error", err)
		body = markup.ErrorHTML("post", err)
	}

	meta, err := seo.ForPost(s.cfg, p)
	if err != nil {
		return nil, err
	}
	return s.execute(layoutSingle, meta, &model.PageData{
		PageTitle: p.Title,
		Path:      p.Path(),
		Site:      data,
		Post:      &model.RenderedPost{Post: p, ContentHTML: body},
	})
}

// Editor renders the authoring form. It is never cached.
func (s *Site) Editor(message string) ([]byte, error) {
	meta, err := seo.ForPage(s.cfg, "Editor", "/admin/editor")
	if err != nil {
		return nil, err
	}
	return s.execute(layoutEditor, meta, &model.PageData{
		PageTitle: "Editor",
		Path:      "/admin/editor",
		Message:   message,
	})
}

// Preview compiles a body the way a post page would, without the chrome.
func (s *Site) Preview(body []byte) template.HTML {
	html, err := s.renderer.Render(body)
	if err != nil {
		return markup.ErrorHTML("preview", err)
	}
	return html
}

func (s *Site) execute(layout string, meta seo.PageMeta, data *model.PageData) ([]byte, error) {
	head, err := meta.HTML()
	if err != nil {
		return nil, err
	}
	data.SiteName = s.cfg.SiteName
	data.BaseURL = s.cfg.BaseURL
	data.Head = head
	data.Layout = strings.TrimSuffix(layout, ".html")

	var buf bytes.Buffer
	if err := s.layouts[layout].ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return nil, fmt.Errorf("failed to execute layout '%s' for '%s': %w", layout, data.Path, err)
	}
	return buf.Bytes(), nil
}

// Sitemap writes sitemap.xml for the posts in data.
func (s *Site) Sitemap(w io.Writer, data *model.SiteData) error {
	return seo.WriteSitemap(w, s.cfg, seo.Entries(data.Posts, data.Tutorials, s.now()))
}

func (s *Site) Robots() string {
	return seo.Robots(s.cfg)
}

func (s *Site) StylesCSS() (string, error) {
	return s.renderer.StylesCSS()
}
