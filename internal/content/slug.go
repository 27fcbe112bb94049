package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	slugPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidSlug reports whether s is a slug new posts may be written under.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ValidSegment reports whether s names a single entry inside a directory.
// Existing files are read under any such name, "go-1.22" included.
func ValidSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// Slugify derives a slug from a post title: lowercase, runs of anything that is
// not a letter or digit collapse to "-", no leading or trailing dashes.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// DisplayTitle turns a file or folder name like "lang-graph_basics" into "Lang Graph Basics".
func DisplayTitle(name string) string {
	name = strings.ReplaceAll(strings.ReplaceAll(name, "-", " "), "_", " ")
	return cases.Title(language.English).String(name)
}
