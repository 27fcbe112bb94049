package model

import "html/template"

// PageData is what every layout receives. Head carries the rendered metadata tags.
type PageData struct {
	SiteName  string
	PageTitle string
	BaseURL   string
	Path      string
	Head      template.HTML
	Site      *SiteData
	Post      *RenderedPost
	Layout    string

	// Message is a status line shown by the editor after a save.
	Message string
}
