package site

import (
	"bytes"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/markup"
)

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func post(title, date, body string) string {
	return "---\ntitle: " + title + "\ndate: " + date + "\ndescription: About " + title + "\n---\n\n" + body
}

func newTestSite(t *testing.T) (*Site, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "content")
	writeFixture(t, filepath.Join(root, "blog", "hello-world.mdx"), post("Hello World", "2024-01-15", "# Hello\n\nFirst post.\n"))
	writeFixture(t, filepath.Join(root, "blog", "second.mdx"), post("Second Post", "2024-03-01", "Body two.\n"))
	writeFixture(t, filepath.Join(root, "tutorials", "ai-basics", "intro.mdx"), post("Intro", "2024-02-10", "```go {1}\npackage main\n```\n"))

	cfg := &config.Config{
		SiteName:        "Test Site",
		SiteDescription: "A test site",
		BaseURL:         "https://example.com",
		ContentDir:      root,
		Extension:       ".mdx",
	}
	s, err := New(cfg, content.NewStore(root, ".mdx"), markup.New())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return s, dir
}

func TestPageHome(t *testing.T) {
	s, _ := newTestSite(t)
	page, err := s.Page("/")
	require.NoError(t, err)

	out := string(page)
	assert.Contains(t, out, "<title>Test Site</title>")
	assert.Contains(t, out, `<a href="/blog/second">Second Post</a>`)
	assert.Contains(t, out, `<a href="/tutorials#ai-basics">Ai Basics</a> (1)`)
}

func TestPageListings(t *testing.T) {
	s, _ := newTestSite(t)

	blog, err := s.Page("/blog/")
	require.NoError(t, err)
	out := string(blog)
	assert.Contains(t, out, "<title>Blog | Test Site</title>")
	second := bytes.Index(blog, []byte("Second Post"))
	hello := bytes.Index(blog, []byte("Hello World"))
	require.True(t, second > 0 && hello > 0)
	assert.Less(t, second, hello, "newest post first")

	tutorials, err := s.Page("/tutorials")
	require.NoError(t, err)
	assert.Contains(t, string(tutorials), `<section id="ai-basics">`)
	assert.Contains(t, string(tutorials), `<a href="/tutorials/ai-basics/intro">Intro</a>`)
}

func TestPagePost(t *testing.T) {
	s, _ := newTestSite(t)

	page, err := s.Page("/blog/hello-world")
	require.NoError(t, err)
	out := string(page)
	assert.Contains(t, out, "<title>Hello World | Test Site</title>")
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/blog/hello-world">`)
	assert.Contains(t, out, `"@type":"BlogPosting"`)
	assert.Contains(t, out, `<h1 id="hello" class="`+markup.DefaultClasses.H1+`">Hello</h1>`)
	assert.Contains(t, out, `<time datetime="2024-01-15">January 15, 2024</time>`)

	tutorial, err := s.Page("/tutorials/ai-basics/intro")
	require.NoError(t, err)
	assert.Contains(t, string(tutorial), `"@type":"TechArticle"`)
	assert.Contains(t, string(tutorial), "data-highlighted-line")
}

func TestPageNotFound(t *testing.T) {
	s, _ := newTestSite(t)
	for _, route := range []string{"/blog/missing", "/nope", "/tutorials/ai-basics", "/blog/../../etc/passwd"} {
		_, err := s.Page(route)
		assert.ErrorIs(t, err, content.ErrNotFound, route)
	}
}

func TestPageParseError(t *testing.T) {
	s, _ := newTestSite(t)
	writeFixture(t, filepath.Join(s.store.Root(), "blog", "broken.mdx"), "no front matter here\n")

	_, err := s.Page("/blog/broken")
	var pe *content.ParseError
	require.ErrorAs(t, err, &pe)

	// listings still render the readable posts
	page, err := s.Page("/blog")
	require.NoError(t, err)
	assert.Contains(t, string(page), "Hello World")
}

func TestPageCacheAndInvalidate(t *testing.T) {
	s, _ := newTestSite(t)
	path := filepath.Join(s.store.Root(), "blog", "hello-world.mdx")

	first, err := s.Page("/blog/hello-world")
	require.NoError(t, err)

	writeFixture(t, path, post("Hello Again", "2024-01-15", "Changed.\n"))
	cached, err := s.Page("/blog/hello-world")
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	s.Invalidate()
	fresh, err := s.Page("/blog/hello-world")
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "Hello Again")
}

func TestPageInvalidatedMidRenderIsNotCached(t *testing.T) {
	root := filepath.Join(t.TempDir(), "content")
	writeFixture(t, filepath.Join(root, "blog", "racy.mdx"), post("Racy", "2024-01-15", "<Touch />\n"))
	cfg := &config.Config{SiteName: "Test Site", BaseURL: "https://example.com", ContentDir: root, Extension: ".mdx"}

	var s *Site
	renders := 0
	comps := markup.DefaultComponents()
	comps.Register("Touch", markup.ComponentFunc(func(w io.Writer, _ markup.Props, _ template.HTML) error {
		renders++
		// a file change landing while the page is being rendered
		s.Invalidate()
		_, err := io.WriteString(w, "<p>touched</p>")
		return err
	}))
	s, err := New(cfg, content.NewStore(root, ".mdx"), markup.New(markup.WithComponents(comps)))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		page, err := s.Page("/blog/racy")
		require.NoError(t, err)
		assert.Contains(t, string(page), "touched")
	}
	assert.Equal(t, 2, renders)
}

func TestEditorAndPreview(t *testing.T) {
	s, _ := newTestSite(t)

	page, err := s.Editor("Saved successfully!")
	require.NoError(t, err)
	assert.Contains(t, string(page), `<p role="status">Saved successfully!</p>`)
	assert.Contains(t, string(page), `<form method="post" action="/admin/editor">`)

	html := s.Preview([]byte("<Callout>\n**hi**\n</Callout>\n"))
	assert.Contains(t, string(html), "<strong>hi</strong>")
}

func TestSitemap(t *testing.T) {
	s, _ := newTestSite(t)
	data, err := s.Data()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Sitemap(&buf, data))
	assert.Equal(t, 6, bytes.Count(buf.Bytes(), []byte("<url>")))
	assert.Contains(t, buf.String(), "<loc>https://example.com/tutorials/ai-basics/intro</loc>")
}

func TestBuild(t *testing.T) {
	s, dir := newTestSite(t)
	static := filepath.Join(dir, "static")
	writeFixture(t, filepath.Join(static, "img", "logo.svg"), "<svg/>")
	out := filepath.Join(dir, "public")

	require.NoError(t, s.Build(BuildOptions{OutputDir: out, StaticDir: static}))

	for _, name := range []string{
		"index.html",
		"blog/index.html",
		"tutorials/index.html",
		"blog/hello-world/index.html",
		"blog/second/index.html",
		"tutorials/ai-basics/intro/index.html",
		"sitemap.xml",
		"robots.txt",
		"static/chroma.css",
		"img/logo.svg",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}

	robots, err := os.ReadFile(filepath.Join(out, "robots.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(robots), "Sitemap: https://example.com/sitemap.xml")
}

func TestBuildFailFastAndKeepGoing(t *testing.T) {
	s, dir := newTestSite(t)
	writeFixture(t, filepath.Join(s.store.Root(), "blog", "broken.mdx"), "---\ntitle: Broken\n---\n")
	out := filepath.Join(dir, "public")

	err := s.Build(BuildOptions{OutputDir: out})
	var pe *content.ParseError
	require.ErrorAs(t, err, &pe)
	assert.NoDirExists(t, out)

	err = s.Build(BuildOptions{OutputDir: out, KeepGoing: true})
	require.ErrorAs(t, err, &pe)
	assert.FileExists(t, filepath.Join(out, "blog", "hello-world", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, "blog", "broken", "index.html"))
}

func TestBuildRefusesUnsafeOutputDir(t *testing.T) {
	s, _ := newTestSite(t)
	for _, dir := range []string{"", ".", "/", filepath.Dir(s.store.Root())} {
		err := s.Build(BuildOptions{OutputDir: dir})
		assert.Error(t, err, dir)
	}
}

func TestBuildWithoutContent(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{SiteName: "Empty", BaseURL: "https://example.com", ContentDir: filepath.Join(dir, "content")}
	s, err := New(cfg, content.NewStore(cfg.ContentDir, ".mdx"), markup.New())
	require.NoError(t, err)

	out := filepath.Join(dir, "public")
	require.NoError(t, s.Build(BuildOptions{OutputDir: out}))
	page, err := os.ReadFile(filepath.Join(out, "blog", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "No posts yet.")
}
