package seo

import (
	"fmt"
	"io"
	"time"

	"github.com/snabb/sitemap"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/model"
)

type ChangeFreq = sitemap.ChangeFreq

const (
	Weekly  = sitemap.Weekly
	Monthly = sitemap.Monthly
)

// Entry is one sitemap URL before it is made absolute.
type Entry struct {
	Path         string
	LastModified time.Time
	ChangeFreq   ChangeFreq
	Priority     float64
}

// Entries lists the static routes, then blog posts, then tutorials. Static
// routes are stamped with now; posts with their own date.
func Entries(blog, tutorials []*model.Post, now time.Time) []Entry {
	entries := []Entry{
		{Path: "/", LastModified: now, ChangeFreq: Monthly, Priority: 1.0},
		{Path: "/blog", LastModified: now, ChangeFreq: Weekly, Priority: 0.8},
		{Path: "/tutorials", LastModified: now, ChangeFreq: Weekly, Priority: 0.8},
	}
	for _, p := range blog {
		entries = append(entries, Entry{Path: p.Path(), LastModified: p.Date, ChangeFreq: Monthly, Priority: 0.7})
	}
	for _, p := range tutorials {
		entries = append(entries, Entry{Path: p.Path(), LastModified: p.Date, ChangeFreq: Monthly, Priority: 0.8})
	}
	return entries
}

// WriteSitemap serializes entries as a sitemaps.org urlset.
func WriteSitemap(w io.Writer, cfg *config.Config, entries []Entry) error {
	sm := sitemap.New()
	for _, e := range entries {
		lastMod := e.LastModified.UTC()
		sm.Add(&sitemap.URL{
			Loc:        cfg.URL(e.Path),
			LastMod:    &lastMod,
			ChangeFreq: e.ChangeFreq,
			Priority:   float32(e.Priority),
		})
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// Robots allows every crawler and points at the sitemap.
func Robots(cfg *config.Config) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + cfg.URL("/sitemap.xml") + "\n"
}
