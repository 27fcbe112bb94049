// Package publish uploads a built site to an S3 bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/logger"
)

// ErrNoBucket is returned when no destination bucket is configured.
var ErrNoBucket = errors.New("no publish bucket configured")

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Publisher struct {
	client putObjectAPI
	bucket string
	prefix string
}

// New builds a Publisher from the default AWS credential chain.
func New(ctx context.Context, cfg config.PublishConfig) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Publisher{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Publish uploads every file under dir and returns how many were written.
// It stops at the first failed upload.
func (p *Publisher) Publish(ctx context.Context, dir string) (int, error) {
	logger.Info("publishing site", "dir", dir, "bucket", p.bucket, "prefix", p.prefix)

	count := 0
	err := filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", name, err)
		}
		if err := p.upload(ctx, name, p.key(rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	logger.Info("successfully published site", "objects", count)
	return count, nil
}

func (p *Publisher) key(rel string) string {
	return path.Join(p.prefix, filepath.ToSlash(rel))
}

func (p *Publisher) upload(ctx context.Context, name, key string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentType(name)),
		CacheControl: aws.String(cacheControl(name)),
	})
	if err != nil {
		logger.Error("failed to upload object", "key", key, "error", err)
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	logger.Debug("uploaded object", "key", key)
	return nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// cacheControl keeps pages fresh and lets assets be cached for a day.
func cacheControl(name string) string {
	switch filepath.Ext(name) {
	case ".html", ".xml", ".txt":
		return "public, max-age=300"
	}
	return "public, max-age=86400"
}
