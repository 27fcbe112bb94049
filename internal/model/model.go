package model

import (
	"html/template"
	"time"
)

// Collection names a group of posts with its own layout on disk and sort policy.
type Collection string

const (
	Blog      Collection = "blog"
	Tutorials Collection = "tutorials"
)

// Grouped reports whether posts live one category directory below the root.
func (c Collection) Grouped() bool {
	return c == Tutorials
}

// Ascending reports whether listings run oldest first.
func (c Collection) Ascending() bool {
	return c == Tutorials
}

func (c Collection) Valid() bool {
	return c == Blog || c == Tutorials
}

// Ref identifies one post file without reading it.
type Ref struct {
	Collection Collection
	Category   string
	Slug       string
}

// Path is the route a post is served under.
func (r Ref) Path() string {
	if r.Collection.Grouped() {
		return "/" + string(r.Collection) + "/" + r.Category + "/" + r.Slug
	}
	return "/" + string(r.Collection) + "/" + r.Slug
}

// Meta is the recognized front matter of a post.
type Meta struct {
	Title       string
	Date        time.Time
	Description string
	Keywords    []string
	Author      string
	ReadingTime string
	Image       string
	ImageAlt    string
}

// Post represents a single blog post or tutorial lesson.
type Post struct {
	Ref
	Meta
	SourcePath string
	Body       []byte
}

// Category is a tutorial folder and the lessons inside it.
type Category struct {
	Name  string
	Title string
	Posts []*Post
}

// SiteData holds all site-wide data handed to listing templates.
type SiteData struct {
	Name        string
	Description string
	BaseURL     string
	Posts       []*Post
	Tutorials   []*Post
	Categories  []*Category
}

// RenderedPost is a post whose body has been compiled to HTML.
type RenderedPost struct {
	*Post
	ContentHTML template.HTML
}
