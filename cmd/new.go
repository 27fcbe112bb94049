package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/model"
)

var (
	newCategory string
	newTitle    string
)

var newCmd = &cobra.Command{
	Use:   "new <blog|tutorials> <slug>",
	Short: "Creates a post file with front matter filled in",
	Long: `The new command creates content/blog/<slug>.mdx, or
content/tutorials/<category>/<slug>.mdx with --category, with a title
(from --title or the slug) and today's date. Existing files are never
overwritten.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := model.Ref{Collection: model.Collection(args[0]), Category: newCategory, Slug: args[1]}
		path, err := createPost(newStore(), ref, newTitle, time.Now())
		if err != nil {
			return err
		}
		logger.Info("created post", "path", path, "route", ref.Path())
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newCategory, "category", "", "tutorial category (directory name)")
	newCmd.Flags().StringVar(&newTitle, "title", "", "post title (default derived from the slug)")
	rootCmd.AddCommand(newCmd)
}

// createPost writes a starter file for ref dated content.Today(now) and
// returns its path. It refuses to overwrite an existing post.
func createPost(store *content.Store, ref model.Ref, title string, now time.Time) (string, error) {
	if !ref.Collection.Valid() {
		return "", fmt.Errorf("unknown collection %q: use blog or tutorials", ref.Collection)
	}
	if !ref.Collection.Grouped() {
		ref.Category = ""
	} else if ref.Category == "" {
		return "", errors.New("tutorials need a --category")
	} else if !content.ValidSlug(ref.Category) {
		return "", fmt.Errorf("%w: category %q", content.ErrInvalidSlug, ref.Category)
	}
	if !content.ValidSlug(ref.Slug) {
		return "", fmt.Errorf("%w: %q", content.ErrInvalidSlug, ref.Slug)
	}

	path := store.File(ref)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to check '%s': %w", path, err)
	}

	if title == "" {
		title = content.DisplayTitle(ref.Slug)
	}
	file, err := content.ComposeFile(model.Meta{
		Title: title,
		Date:  content.Today(now),
	}, []byte("Write your post here.\n"))
	if err != nil {
		return "", err
	}
	if err := store.Save(ref, file); err != nil {
		return "", err
	}
	return path, nil
}
