package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/model"
)

// Store is a directory of content files: <root>/blog/<slug><ext> and
// <root>/tutorials/<category>/<slug><ext>.
type Store struct {
	root string
	ext  string

	// serializes Save; concurrent saves to one slug still resolve last-write-wins
	mu sync.Mutex
}

func NewStore(root, ext string) *Store {
	if ext == "" {
		ext = ".mdx"
	}
	return &Store{root: root, ext: ext}
}

func (s *Store) Root() string { return s.root }

// Extension is the markup file extension, including the dot.
func (s *Store) Extension() string { return s.ext }

// File returns the on-disk path for ref.
func (s *Store) File(ref model.Ref) string {
	if ref.Collection.Grouped() {
		return filepath.Join(s.root, string(ref.Collection), ref.Category, ref.Slug+s.ext)
	}
	return filepath.Join(s.root, string(ref.Collection), ref.Slug+s.ext)
}

// List enumerates the posts of a collection without reading them. Entries come
// back in directory order. A collection whose root does not exist is empty.
func (s *Store) List(c model.Collection) ([]model.Ref, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	dir := filepath.Join(s.root, string(c))

	if !c.Grouped() {
		return s.listDir(dir, c, "")
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection directory '%s': %w", dir, err)
	}

	var refs []model.Ref
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !ValidSegment(e.Name()) {
			logger.Warn("skipping category with unusable name", "dir", filepath.Join(dir, e.Name()))
			continue
		}
		catRefs, err := s.listDir(filepath.Join(dir, e.Name()), c, e.Name())
		if err != nil {
			return nil, err
		}
		refs = append(refs, catRefs...)
	}
	return refs, nil
}

func (s *Store) listDir(dir string, c model.Collection, category string) ([]model.Ref, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}

	var refs []model.Ref
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), s.ext)
		if !ValidSegment(slug) {
			logger.Warn("skipping content file with unusable name", "file", filepath.Join(dir, e.Name()))
			continue
		}
		refs = append(refs, model.Ref{Collection: c, Category: category, Slug: slug})
	}
	return refs, nil
}

// Read loads and parses the post behind ref. A missing file yields ErrNotFound,
// a bad header a *ParseError.
func (s *Store) Read(ref model.Ref) (*model.Post, error) {
	if err := checkRef(ref, ValidSegment); err != nil {
		return nil, err
	}
	path := s.File(ref)

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	meta, body, err := ParseFrontMatter(raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}

	return &model.Post{
		Ref:        ref,
		Meta:       meta,
		SourcePath: path,
		Body:       body,
	}, nil
}

// Resolve maps a route such as /blog/my-post or /tutorials/langgraph/intro to
// its post.
func (s *Store) Resolve(route string) (*model.Post, error) {
	ref, err := ParseRoute(route)
	if err != nil {
		return nil, err
	}
	return s.Read(ref)
}

// ParseRoute splits a post route into a Ref. Routes that cannot name a post
// yield ErrNotFound.
func ParseRoute(route string) (model.Ref, error) {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) < 2 {
		return model.Ref{}, fmt.Errorf("%w: %s", ErrNotFound, route)
	}

	var ref model.Ref
	switch c := model.Collection(parts[0]); {
	case c == model.Blog && len(parts) == 2:
		ref = model.Ref{Collection: c, Slug: parts[1]}
	case c == model.Tutorials && len(parts) == 3:
		ref = model.Ref{Collection: c, Category: parts[1], Slug: parts[2]}
	default:
		return model.Ref{}, fmt.Errorf("%w: %s", ErrNotFound, route)
	}

	if err := checkRef(ref, ValidSegment); err != nil {
		return model.Ref{}, fmt.Errorf("%w: %s", ErrNotFound, route)
	}
	return ref, nil
}

// checkRef validates ref's names with valid: ValidSegment when reading,
// ValidSlug when writing.
func checkRef(ref model.Ref, valid func(string) bool) error {
	if !ref.Collection.Valid() {
		return fmt.Errorf("unknown collection %q", ref.Collection)
	}
	if !valid(ref.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, ref.Slug)
	}
	if ref.Collection.Grouped() && !valid(ref.Category) {
		return fmt.Errorf("%w: category %q", ErrInvalidSlug, ref.Category)
	}
	return nil
}

// Posts reads every post in a collection and returns them in listing order.
// Posts that fail to read are left out and their errors joined into err, so
// callers choose whether one bad file fails the whole listing.
func (s *Store) Posts(c model.Collection) ([]*model.Post, error) {
	refs, err := s.List(c)
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(refs))
	var errs []error
	for _, ref := range refs {
		p, err := s.Read(ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		posts = append(posts, p)
	}
	SortPosts(posts, c)
	return posts, errors.Join(errs...)
}

// SortPosts orders blog posts newest first and tutorials oldest first. Equal
// dates fall back to category then slug so listings are deterministic.
func SortPosts(posts []*model.Post, c model.Collection) {
	asc := c.Ascending()
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.Date.Equal(b.Date) {
			if asc {
				return a.Date.Before(b.Date)
			}
			return a.Date.After(b.Date)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Slug < b.Slug
	})
}

// Categories groups the tutorials collection by folder. Categories are sorted
// by name, lessons oldest first.
func (s *Store) Categories() ([]*model.Category, error) {
	posts, err := s.Posts(model.Tutorials)
	return GroupByCategory(posts), err
}

// GroupByCategory buckets already sorted tutorial posts by category.
func GroupByCategory(posts []*model.Post) []*model.Category {
	byName := make(map[string]*model.Category)
	var cats []*model.Category
	for _, p := range posts {
		cat, ok := byName[p.Category]
		if !ok {
			cat = &model.Category{Name: p.Category, Title: DisplayTitle(p.Category)}
			byName[p.Category] = cat
			cats = append(cats, cat)
		}
		cat.Posts = append(cat.Posts, p)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats
}

// Save writes content as the file for ref, creating directories as needed.
// There is no rollback if the write fails part way.
func (s *Store) Save(ref model.Ref, content []byte) error {
	if err := checkRef(ref, ValidSlug); err != nil {
		return err
	}
	path := s.File(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
