package content

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/Bitlatte/portfolio/internal/model"
)

// Importer turns HTML articles into markdown posts.
type Importer struct {
	converter *md.Converter
	now       func() time.Time
}

func NewImporter() *Importer {
	return &Importer{
		converter: md.NewConverter("", true, nil),
		now:       time.Now,
	}
}

// Convert converts html to a post file. A blank meta.Title is taken from the
// first top-level heading; a zero meta.Date becomes today.
func (im *Importer) Convert(html string, meta model.Meta) ([]byte, error) {
	body, err := im.converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert html to markdown: %w", err)
	}

	if meta.Title == "" {
		meta.Title = extractTitle(body)
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("no title given and no heading found in document")
	}
	if meta.Date.IsZero() {
		meta.Date = im.now().UTC().Truncate(24 * time.Hour)
	}
	if meta.Description == "" {
		meta.Description = firstParagraph(body)
	}

	return ComposeFile(meta, []byte(body))
}

func extractTitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func firstParagraph(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		return line
	}
	return ""
}
