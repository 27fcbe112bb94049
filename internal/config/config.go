package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Config struct {
	SiteName        string        `mapstructure:"siteName"`
	SiteDescription string        `mapstructure:"siteDescription"`
	BaseURL         string        `mapstructure:"baseURL"`
	Author          string        `mapstructure:"author"`
	TwitterHandle   string        `mapstructure:"twitterHandle"`
	ContentDir      string        `mapstructure:"contentDir"`
	OutputDir       string        `mapstructure:"outputDir"`
	Extension       string        `mapstructure:"extension"`
	Server          ServerConfig  `mapstructure:"server"`
	Publish         PublishConfig `mapstructure:"publish"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// PublishConfig describes where `portfolio publish` uploads the built site.
type PublishConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// Defaults are registered with viper before any config file is read.
var Defaults = map[string]any{
	"siteName":        "Portfolio",
	"siteDescription": "Operator. Creator. Innovator.",
	"baseURL":         "http://localhost:8080",
	"author":          "",
	"twitterHandle":   "",
	"contentDir":      "content",
	"outputDir":       "public",
	"extension":       ".mdx",
	"server.addr":     ":8080",
	"publish.bucket":  "",
	"publish.prefix":  "",
	"publish.region":  "",
}

// Validate normalizes the config in place and rejects values the site cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid baseURL %q: scheme and host are required", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Extension == "" {
		c.Extension = ".mdx"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.ContentDir == "" {
		return fmt.Errorf("contentDir must not be empty")
	}
	return nil
}

// URL joins a site-relative path onto the base URL.
func (c *Config) URL(path string) string {
	if path == "" || path == "/" {
		return c.BaseURL
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}
