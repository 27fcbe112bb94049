package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/Bitlatte/portfolio/internal/model"
)

// DateLayout is how dates are written back into front matter.
const DateLayout = "2006-01-02"

// Today is the date stamped on posts created at now. Dates are always taken
// in UTC so the CLI and the editor agree.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type matter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Tags        []string `yaml:"tags"`
	Author      string   `yaml:"author"`
	ReadingTime string   `yaml:"readingTime"`
	Image       string   `yaml:"image"`
	ImageAlt    string   `yaml:"imageAlt"`
}

// ParseFrontMatter splits raw file content into its metadata and body.
// Title and date are required; optional fields default to empty values.
func ParseFrontMatter(raw []byte) (model.Meta, []byte, error) {
	var fm matter
	body, err := frontmatter.MustParse(bytes.NewReader(raw), &fm)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return model.Meta{}, nil, &ParseError{Err: errors.New("no front matter header")}
		}
		return model.Meta{}, nil, &ParseError{Err: err}
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return model.Meta{}, nil, &ParseError{Err: errors.New(`missing required key "title"`)}
	}
	if strings.TrimSpace(fm.Date) == "" {
		return model.Meta{}, nil, &ParseError{Err: errors.New(`missing required key "date"`)}
	}
	date, err := parseDate(fm.Date)
	if err != nil {
		return model.Meta{}, nil, &ParseError{Err: err}
	}

	keywords := make([]string, 0, len(fm.Keywords)+len(fm.Tags))
	seen := make(map[string]bool)
	for _, k := range append(fm.Keywords, fm.Tags...) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	return model.Meta{
		Title:       title,
		Date:        date,
		Description: fm.Description,
		Keywords:    keywords,
		Author:      fm.Author,
		ReadingTime: fm.ReadingTime,
		Image:       fm.Image,
		ImageAlt:    fm.ImageAlt,
	}, body, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD or RFC3339", s)
}

type composed struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	ReadingTime string   `yaml:"readingTime,omitempty"`
	Image       string   `yaml:"image,omitempty"`
	ImageAlt    string   `yaml:"imageAlt,omitempty"`
}

// ComposeFile renders meta as a YAML header followed by body, the inverse of
// ParseFrontMatter.
func ComposeFile(meta model.Meta, body []byte) ([]byte, error) {
	header, err := yaml.Marshal(composed{
		Title:       meta.Title,
		Date:        meta.Date.Format(DateLayout),
		Description: meta.Description,
		Keywords:    meta.Keywords,
		Author:      meta.Author,
		ReadingTime: meta.ReadingTime,
		Image:       meta.Image,
		ImageAlt:    meta.ImageAlt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.Write(bytes.TrimLeft(body, "\n"))
	if !bytes.HasSuffix(body, []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
