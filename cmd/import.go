package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/model"
)

var (
	importSlug  string
	importTitle string
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Converts an HTML article into a blog post",
	Long: `The import command converts an HTML document to markdown and saves it as
a blog post. The title defaults to the first top-level heading, the date to
today and the description to the first paragraph. Use --slug to name the
file; without it the slug is derived from the title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", args[0], err)
		}

		file, err := content.NewImporter().Convert(string(html), model.Meta{Title: importTitle})
		if err != nil {
			return err
		}

		slug := importSlug
		if slug == "" {
			meta, _, err := content.ParseFrontMatter(file)
			if err != nil {
				return err
			}
			slug = content.Slugify(meta.Title)
		}
		if !content.ValidSlug(slug) {
			return errors.New("could not derive a valid slug; pass --slug")
		}

		ref := model.Ref{Collection: model.Blog, Slug: slug}
		if err := newStore().Save(ref, file); err != nil {
			return err
		}
		logger.Info("imported post", "from", args[0], "route", ref.Path())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSlug, "slug", "", "slug of the new post")
	importCmd.Flags().StringVar(&importTitle, "title", "", "post title (default is the first heading)")
	rootCmd.AddCommand(importCmd)
}
