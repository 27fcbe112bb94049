package site

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Bitlatte/portfolio/internal/model"
)

//go:embed layouts/*.html
var layoutFS embed.FS

const baseLayout = "base.html"

// Page layouts, each parsed on top of base.html.
const (
	layoutHome      = "home.html"
	layoutPosts     = "list-posts.html"
	layoutTutorials = "list-tutorials.html"
	layoutSingle    = "single.html"
	layoutEditor    = "editor.html"
)

var layoutFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"isodate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"recent": func(n int, posts []*model.Post) []*model.Post {
		if len(posts) > n {
			return posts[:n]
		}
		return posts
	},
}

func parseLayouts() (map[string]*template.Template, error) {
	base, err := template.New(baseLayout).Funcs(layoutFuncs).ParseFS(layoutFS, "layouts/"+baseLayout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", baseLayout, err)
	}

	layouts := make(map[string]*template.Template)
	for _, name := range []string{layoutHome, layoutPosts, layoutTutorials, layoutSingle, layoutEditor} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base layout for %s: %w", name, err)
		}
		t, err := clone.ParseFS(layoutFS, "layouts/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", name, err)
		}
		layouts[name] = t
	}
	return layouts, nil
}
