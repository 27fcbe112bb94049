package seo

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		SiteName:        "Lachlan Chavasse",
		SiteDescription: "Operator. Creator. Innovator.",
		BaseURL:         "https://lachlan.xyz",
		Author:          "Lachlan Chavasse",
		TwitterHandle:   "@lachlanchavasse",
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func blogPost(slug, day string) *model.Post {
	return &model.Post{
		Ref:  model.Ref{Collection: model.Blog, Slug: slug},
		Meta: model.Meta{Title: slug, Date: date(day)},
	}
}

func tutorial(category, slug, day string) *model.Post {
	return &model.Post{
		Ref:  model.Ref{Collection: model.Tutorials, Category: category, Slug: slug},
		Meta: model.Meta{Title: slug, Date: date(day)},
	}
}

func TestEntries(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	entries := Entries(
		[]*model.Post{blogPost("a", "2024-03-01"), blogPost("b", "2024-01-15")},
		[]*model.Post{tutorial("ai-basics", "intro", "2024-02-10")},
		now,
	)
	require.Len(t, entries, 6)

	assert.Equal(t, Entry{Path: "/", LastModified: now, ChangeFreq: Monthly, Priority: 1.0}, entries[0])
	assert.Equal(t, Entry{Path: "/blog", LastModified: now, ChangeFreq: Weekly, Priority: 0.8}, entries[1])
	assert.Equal(t, Entry{Path: "/tutorials", LastModified: now, ChangeFreq: Weekly, Priority: 0.8}, entries[2])
	assert.Equal(t, Entry{Path: "/blog/a", LastModified: date("2024-03-01"), ChangeFreq: Monthly, Priority: 0.7}, entries[3])
	assert.Equal(t, Entry{Path: "/blog/b", LastModified: date("2024-01-15"), ChangeFreq: Monthly, Priority: 0.7}, entries[4])
	assert.Equal(t, Entry{Path: "/tutorials/ai-basics/intro", LastModified: date("2024-02-10"), ChangeFreq: Monthly, Priority: 0.8}, entries[5])
}

type siteURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func TestWriteSitemap(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	entries := Entries([]*model.Post{blogPost("a", "2024-03-01")}, nil, now)

	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, testConfig(), entries))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var set struct {
		URLs []siteURL `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &set))
	require.Len(t, set.URLs, 4)
	assert.Equal(t, siteURL{
		Loc:        "https://lachlan.xyz",
		LastMod:    "2026-10-19T12:00:00Z",
		ChangeFreq: "monthly",
		Priority:   "1",
	}, set.URLs[0])
	assert.Equal(t, siteURL{
		Loc:        "https://lachlan.xyz/blog/a",
		LastMod:    "2024-03-01T00:00:00Z",
		ChangeFreq: "monthly",
		Priority:   "0.7",
	}, set.URLs[3])
}

func TestRobots(t *testing.T) {
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://lachlan.xyz/sitemap.xml\n", Robots(testConfig()))
}

func TestForPost(t *testing.T) {
	p := blogPost("hello-world", "2024-01-15")
	p.Title = "Hello <World>"
	p.Description = "First post"
	p.Keywords = []string{"go", "ssg"}
	p.Image = "/images/hello.png"

	m, err := ForPost(testConfig(), p)
	require.NoError(t, err)
	assert.Equal(t, "Hello <World> | Lachlan Chavasse", m.Title)
	assert.Equal(t, "https://lachlan.xyz/blog/hello-world", m.Canonical)
	assert.Equal(t, "https://lachlan.xyz/images/hello.png", m.Image)
	assert.Equal(t, "summary_large_image", m.TwitterCard())

	head, err := m.HTML()
	require.NoError(t, err)
	out := string(head)
	assert.Contains(t, out, "<title>Hello &lt;World&gt; | Lachlan Chavasse</title>")
	assert.Contains(t, out, `<meta property="og:type" content="article">`)
	assert.Contains(t, out, `<meta property="article:published_time" content="2024-01-15T00:00:00Z">`)
	assert.Contains(t, out, `<meta name="keywords" content="go, ssg">`)
	assert.Contains(t, out, `<link rel="canonical" href="https://lachlan.xyz/blog/hello-world">`)
	assert.Contains(t, out, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, out, `<script type="application/ld+json">{"@context":"https://schema.org","@type":"BlogPosting"`)
}

func TestForPostWithoutImage(t *testing.T) {
	m, err := ForPost(testConfig(), tutorial("lang-graph", "agents", "2024-02-10"))
	require.NoError(t, err)
	assert.Equal(t, "summary", m.TwitterCard())
	assert.Equal(t, "Operator. Creator. Innovator.", m.Description)
	assert.Equal(t, "Lachlan Chavasse", m.Author)
}

func TestArticleJSONLD(t *testing.T) {
	p := tutorial("lang-graph", "agents", "2024-02-10")
	p.Keywords = []string{"ai"}
	ld, err := Article(testConfig(), p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(ld), &got))
	assert.Equal(t, "TechArticle", got["@type"])
	assert.Equal(t, "agents", got["headline"])
	assert.Equal(t, "https://lachlan.xyz/tutorials/lang-graph/agents", got["url"])
	assert.Equal(t, "lang-graph", got["articleSection"])
	assert.Equal(t, "ai", got["keywords"])
	assert.Equal(t, "2024-02-10T00:00:00Z", got["datePublished"])
}

func TestForPage(t *testing.T) {
	cfg := testConfig()
	home, err := ForPage(cfg, "", "/")
	require.NoError(t, err)
	assert.Equal(t, "Lachlan Chavasse", home.Title)
	assert.Equal(t, "https://lachlan.xyz", home.Canonical)
	assert.Equal(t, "website", home.Type)

	blog, err := ForPage(cfg, "Blog", "/blog")
	require.NoError(t, err)
	assert.Equal(t, "Blog | Lachlan Chavasse", blog.Title)

	head, err := blog.HTML()
	require.NoError(t, err)
	assert.Contains(t, string(head), `"@type":"WebSite"`)
	assert.NotContains(t, string(head), "article:published_time")
}
