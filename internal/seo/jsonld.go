package seo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/model"
)

type person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type webPage struct {
	ID string `json:"@id"`
}

type articleLD struct {
	Context          string   `json:"@context"`
	Type             string   `json:"@type"`
	Headline         string   `json:"headline"`
	Description      string   `json:"description,omitempty"`
	DatePublished    string   `json:"datePublished"`
	URL              string   `json:"url"`
	MainEntityOfPage webPage  `json:"mainEntityOfPage"`
	Image            string   `json:"image,omitempty"`
	Keywords         string   `json:"keywords,omitempty"`
	ArticleSection   string   `json:"articleSection,omitempty"`
	Author           *person  `json:"author,omitempty"`
	Publisher        *person  `json:"publisher,omitempty"`
	InLanguage       string   `json:"inLanguage"`
	About            []string `json:"about,omitempty"`
}

type webSiteLD struct {
	Context     string  `json:"@context"`
	Type        string  `json:"@type"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description string  `json:"description,omitempty"`
	Author      *person `json:"author,omitempty"`
}

// Article is the JSON-LD of a post: a BlogPosting for blog posts and a
// TechArticle for tutorials.
func Article(cfg *config.Config, p *model.Post) (template.JS, error) {
	kind := "BlogPosting"
	if p.Collection == model.Tutorials {
		kind = "TechArticle"
	}
	url := cfg.URL(p.Path())
	ld := articleLD{
		Context:          "https://schema.org",
		Type:             kind,
		Headline:         p.Title,
		Description:      p.Description,
		DatePublished:    p.Date.Format(time.RFC3339),
		URL:              url,
		MainEntityOfPage: webPage{ID: url},
		Image:            absolute(cfg, p.Image),
		Keywords:         strings.Join(p.Keywords, ", "),
		ArticleSection:   p.Category,
		InLanguage:       "en",
	}
	author := p.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		ld.Author = &person{Type: "Person", Name: author}
	}
	if cfg.Author != "" {
		ld.Publisher = &person{Type: "Person", Name: cfg.Author}
	}
	return marshal(ld)
}

// WebSite is the JSON-LD of landing and listing pages.
func WebSite(cfg *config.Config) (template.JS, error) {
	ld := webSiteLD{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        cfg.SiteName,
		URL:         cfg.BaseURL,
		Description: cfg.SiteDescription,
	}
	if cfg.Author != "" {
		ld.Author = &person{Type: "Person", Name: cfg.Author}
	}
	return marshal(ld)
}

// marshal relies on encoding/json escaping <, > and & so the result can sit
// inside a script element.
func marshal(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return template.JS(b), nil
}
