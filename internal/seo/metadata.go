// Package seo produces the metadata search engines and link previews read:
// head tags, JSON-LD structured data, the sitemap and robots.txt.
package seo

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/model"
)

// PageMeta is everything emitted into a page's <head>.
type PageMeta struct {
	Title         string
	Description   string
	Canonical     string
	Keywords      []string
	Author        string
	SiteName      string
	Type          string // "website" or "article"
	Image         string
	ImageAlt      string
	Published     time.Time
	TwitterHandle string
	JSONLD        template.JS
}

// ForPage is the metadata of a landing or listing page. An empty title means
// the site name alone.
func ForPage(cfg *config.Config, title, path string) (PageMeta, error) {
	m := PageMeta{
		Title:         fullTitle(cfg, title),
		Description:   cfg.SiteDescription,
		Canonical:     cfg.URL(path),
		Author:        cfg.Author,
		SiteName:      cfg.SiteName,
		Type:          "website",
		TwitterHandle: cfg.TwitterHandle,
	}
	ld, err := WebSite(cfg)
	if err != nil {
		return PageMeta{}, err
	}
	m.JSONLD = ld
	return m, nil
}

// ForPost is the metadata of a single post.
func ForPost(cfg *config.Config, p *model.Post) (PageMeta, error) {
	author := p.Author
	if author == "" {
		author = cfg.Author
	}
	m := PageMeta{
		Title:         fullTitle(cfg, p.Title),
		Description:   p.Description,
		Canonical:     cfg.URL(p.Path()),
		Keywords:      p.Keywords,
		Author:        author,
		SiteName:      cfg.SiteName,
		Type:          "article",
		Image:         absolute(cfg, p.Image),
		ImageAlt:      p.ImageAlt,
		Published:     p.Date,
		TwitterHandle: cfg.TwitterHandle,
	}
	if m.Description == "" {
		m.Description = cfg.SiteDescription
	}
	ld, err := Article(cfg, p)
	if err != nil {
		return PageMeta{}, err
	}
	m.JSONLD = ld
	return m, nil
}

func fullTitle(cfg *config.Config, title string) string {
	if title == "" || title == cfg.SiteName {
		return cfg.SiteName
	}
	return title + " | " + cfg.SiteName
}

func absolute(cfg *config.Config, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return cfg.URL(ref)
}

// TwitterCard is summary_large_image when the page has an image.
func (m PageMeta) TwitterCard() string {
	if m.Image != "" {
		return "summary_large_image"
	}
	return "summary"
}

func (m PageMeta) PublishedTime() string {
	if m.Published.IsZero() {
		return ""
	}
	return m.Published.Format(time.RFC3339)
}

func (m PageMeta) KeywordList() string {
	return strings.Join(m.Keywords, ", ")
}

var headTemplate = template.Must(template.New("head").Parse(`<title>{{.Title}}</title>
{{with .Description}}<meta name="description" content="{{.}}">
{{end}}{{with .KeywordList}}<meta name="keywords" content="{{.}}">
{{end}}{{with .Author}}<meta name="author" content="{{.}}">
{{end}}<link rel="canonical" href="{{.Canonical}}">
<meta property="og:type" content="{{.Type}}">
<meta property="og:title" content="{{.Title}}">
{{with .Description}}<meta property="og:description" content="{{.}}">
{{end}}<meta property="og:url" content="{{.Canonical}}">
<meta property="og:site_name" content="{{.SiteName}}">
{{with .Image}}<meta property="og:image" content="{{.}}">
{{end}}{{with .ImageAlt}}<meta property="og:image:alt" content="{{.}}">
{{end}}{{with .PublishedTime}}<meta property="article:published_time" content="{{.}}">
{{end}}<meta name="twitter:card" content="{{.TwitterCard}}">
<meta name="twitter:title" content="{{.Title}}">
{{with .Description}}<meta name="twitter:description" content="{{.}}">
{{end}}{{with .Image}}<meta name="twitter:image" content="{{.}}">
{{end}}{{with .TwitterHandle}}<meta name="twitter:creator" content="{{.}}">
{{end}}{{with .JSONLD}}<script type="application/ld+json">{{.}}</script>
{{end}}`))

// HTML renders the head tags.
func (m PageMeta) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := headTemplate.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render head tags: %w", err)
	}
	return template.HTML(buf.String()), nil
}
