package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/markup"
	"github.com/Bitlatte/portfolio/internal/site"
)

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	cfg := &config.Config{
		SiteName:        "Test Site",
		SiteDescription: "A test site",
		BaseURL:         "https://example.com",
		ContentDir:      root,
		Extension:       ".mdx",
	}
	st, err := site.New(cfg, content.NewStore(root, ".mdx"), markup.New())
	require.NoError(t, err)
	s := New(st, WithStaticDir(filepath.Join(filepath.Dir(root), "static")))
	s.now = func() time.Time { return time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC) }
	return s
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "content")
	writeFixture(t, filepath.Join(root, "blog", "first.mdx"), "---\ntitle: First\ndate: 2024-01-15\n---\n\nHello from the first post.\n")
	writeFixture(t, filepath.Join(root, "tutorials", "go", "basics.mdx"), "---\ntitle: Basics\ndate: 2024-02-10\n---\n\n```go {1}\npackage main\n```\n")
	return root
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPages(t *testing.T) {
	h := newTestServer(t, fixtureRoot(t)).Routes()

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/", http.StatusOK, "<title>Test Site</title>"},
		{"/blog", http.StatusOK, `<a href="/blog/first">First</a>`},
		{"/blog/", http.StatusOK, "<title>Blog | Test Site</title>"},
		{"/blog/first", http.StatusOK, "Hello from the first post."},
		{"/tutorials", http.StatusOK, `<section id="go">`},
		{"/tutorials/go/basics", http.StatusOK, `data-language="go"`},
		{"/blog/missing", http.StatusNotFound, "404"},
		{"/tutorials/go", http.StatusNotFound, "404"},
		{"/nowhere/at/all", http.StatusNotFound, "404"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMalformedPostIs500(t *testing.T) {
	root := fixtureRoot(t)
	writeFixture(t, filepath.Join(root, "blog", "broken.mdx"), "---\ndate: 2024-01-01\n---\nno title\n")
	h := newTestServer(t, root).Routes()

	rec := do(t, h, http.MethodGet, "/blog/broken", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodGet, "/blog", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSEOEndpoints(t *testing.T) {
	h := newTestServer(t, fixtureRoot(t)).Routes()

	rec := do(t, h, http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, 5, strings.Count(rec.Body.String(), "<url>"))
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/tutorials/go/basics</loc>")

	rec = do(t, h, http.MethodGet, "/robots.txt", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")

	rec = do(t, h, http.MethodGet, "/static/chroma.css", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ".chroma")
}

func TestSaveBlogPost(t *testing.T) {
	root := filepath.Join(t.TempDir(), "content")
	h := newTestServer(t, root).Routes()

	// a listing rendered before the save must not be served stale afterwards
	rec := do(t, h, http.MethodGet, "/blog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hello-world")

	body := `{"slug":"hello-world","content":"---\ntitle: Hello\ndate: 2024-05-01\n---\n\n# Title\n"}`
	rec = do(t, h, http.MethodPost, "/api/blog/save", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	saved, err := os.ReadFile(filepath.Join(root, "blog", "hello-world.mdx"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "# Title")

	rec = do(t, h, http.MethodGet, "/blog", "", "")
	assert.Contains(t, rec.Body.String(), `<a href="/blog/hello-world">Hello</a>`)
}

func TestSaveBlogPostErrors(t *testing.T) {
	h := newTestServer(t, filepath.Join(t.TempDir(), "content")).Routes()

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"missing content", `{"slug":"a"}`, http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{"missing slug", `{"content":"x"}`, http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{"malformed", `{"slug":`, http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{"traversal", `{"slug":"../evil","content":"x"}`, http.StatusBadRequest, `{"error":"Invalid slug"}`},
		{"separator", `{"slug":"a/b","content":"x"}`, http.StatusBadRequest, `{"error":"Invalid slug"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/blog/save", "application/json", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestSaveBlogPostWriteFailure(t *testing.T) {
	// a regular file where the content directory should be
	root := filepath.Join(t.TempDir(), "content")
	writeFixture(t, root, "not a directory")
	h := newTestServer(t, root).Routes()

	rec := do(t, h, http.MethodPost, "/api/blog/save", "application/json", `{"slug":"a","content":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to save blog post"}`, rec.Body.String())
}

func TestPreview(t *testing.T) {
	h := newTestServer(t, fixtureRoot(t)).Routes()

	rec := do(t, h, http.MethodPost, "/api/preview", "application/json", `{"content":"**bold**"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>bold</strong>")

	rec = do(t, h, http.MethodPost, "/api/preview", "text/markdown", "<Nope />")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="component-error"`)

	form := url.Values{"content": {"_em_"}}.Encode()
	rec = do(t, h, http.MethodPost, "/api/preview", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>em</em>")
}

func TestEditor(t *testing.T) {
	root := fixtureRoot(t)
	h := newTestServer(t, root).Routes()

	rec := do(t, h, http.MethodGet, "/admin/editor", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="title"`)

	rec = do(t, h, http.MethodPost, "/admin/editor", "application/x-www-form-urlencoded", url.Values{"title": {"Only title"}}.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in both title and content")

	form := url.Values{
		"title":   {"My New Post!"},
		"content": {"A short intro.\n\nMore text."},
	}.Encode()
	rec = do(t, h, http.MethodPost, "/admin/editor", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saved successfully!")

	raw, err := os.ReadFile(filepath.Join(root, "blog", "my-new-post.mdx"))
	require.NoError(t, err)
	meta, body, err := content.ParseFrontMatter(raw)
	require.NoError(t, err)
	assert.Equal(t, "My New Post!", meta.Title)
	assert.Equal(t, "2026-10-19", meta.Date.Format("2006-01-02"))
	assert.Equal(t, "A short intro.", meta.Description)
	assert.Contains(t, string(body), "More text.")

	rec = do(t, h, http.MethodGet, "/blog/my-new-post", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndStatic(t *testing.T) {
	root := fixtureRoot(t)
	writeFixture(t, filepath.Join(filepath.Dir(root), "static", "img", "logo.svg"), "<svg/>")
	h := newTestServer(t, root).Routes()

	rec := do(t, h, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/img/logo.svg", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))

	rec = do(t, h, http.MethodGet, "/img/../../content/blog/first.mdx", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
