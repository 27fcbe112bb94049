package site

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/model"
)

// BuildOptions controls a static build.
type BuildOptions struct {
	OutputDir string
	// StaticDir is copied verbatim into OutputDir when it exists.
	StaticDir string
	// KeepGoing skips posts that fail instead of aborting, and reports every
	// failure at the end.
	KeepGoing bool
}

// Build pre-renders every route into opts.OutputDir, along with sitemap.xml,
// robots.txt and the code stylesheet.
func (s *Site) Build(opts BuildOptions) error {
	outputDir := opts.OutputDir
	if err := checkOutputDir(outputDir, s.store.Root()); err != nil {
		return err
	}

	data, err := s.Data()
	var errs []error
	if err != nil {
		if !opts.KeepGoing {
			return fmt.Errorf("failed to read content: %w", err)
		}
		logger.Warn("skipping posts that failed to read", "error", err)
		errs = append(errs, err)
	}

	logger.Info("cleaning output directory", "dir", outputDir)
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			logger.Info("copying static assets", "from", opts.StaticDir, "to", outputDir)
			if err := copyDirContents(opts.StaticDir, outputDir); err != nil {
				return fmt.Errorf("failed to copy static assets: %w", err)
			}
		} else {
			logger.Debug("static assets directory not found, skipping copy", "dir", opts.StaticDir)
		}
	}

	for _, route := range []string{"/", "/blog", "/tutorials"} {
		page, err := s.renderListing(route, data)
		if err != nil {
			return err
		}
		if err := writePage(outputDir, route, page); err != nil {
			return err
		}
	}

	posts := append(append([]*model.Post{}, data.Posts...), data.Tutorials...)
	for _, p := range posts {
		page, err := s.renderPost(p, data)
		if err == nil {
			err = writePage(outputDir, p.Path(), page)
		}
		if err != nil {
			if !opts.KeepGoing {
				return err
			}
			logger.Warn("skipping post", "path", p.SourcePath, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Debug("generated page", "route", p.Path())
	}

	var sitemap bytes.Buffer
	if err := s.Sitemap(&sitemap, data); err != nil {
		return err
	}
	css, err := s.StylesCSS()
	if err != nil {
		return err
	}
	extras := map[string][]byte{
		"sitemap.xml":       sitemap.Bytes(),
		"robots.txt":        []byte(s.Robots()),
		"static/chroma.css": []byte(css),
	}
	for name, body := range extras {
		if err := writeFile(filepath.Join(outputDir, filepath.FromSlash(name)), body); err != nil {
			return err
		}
	}

	logger.Info("build finished", "posts", len(data.Posts), "tutorials", len(data.Tutorials), "failed", len(errs))
	return errors.Join(errs...)
}

// checkOutputDir refuses directories whose removal would take the site's
// sources with it.
func checkOutputDir(outputDir, contentDir string) error {
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory '%s': %w", outputDir, err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	src, err := filepath.Abs(contentDir)
	if err != nil {
		return fmt.Errorf("failed to resolve content directory '%s': %w", contentDir, err)
	}
	if outputDir == "" || out == filepath.Dir(out) || isWithin(cwd, out) || isWithin(src, out) {
		return fmt.Errorf("refusing to use '%s' as the output directory", outputDir)
	}
	return nil
}

// isWithin reports whether path is dir or lies inside it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writePage(outputDir, route string, page []byte) error {
	return writeFile(filepath.Join(outputDir, filepath.FromSlash(route), "index.html"), page)
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}

// copyDirContents recursively copies contents from src to dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		return nil
	})
}

func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return nil
}
