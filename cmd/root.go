package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/config"
	"github.com/Bitlatte/portfolio/internal/content"
	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/markup"
	"github.com/Bitlatte/portfolio/internal/site"
)

const conventionalStaticDir = "static"

var (
	cfgFile   string
	debug     bool
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio - blog and tutorial site generator and server",
	Long: `portfolio renders a personal site from markdown posts with front matter:
a landing page, a blog, tutorials grouped by category, plus the metadata,
sitemap and robots.txt search engines read. It can write the site out as
static files, serve it with a live editor, or upload a build to S3.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(os.Stderr, debug, false)
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newStore() *content.Store {
	return content.NewStore(appConfig.ContentDir, appConfig.Extension)
}

func newSite() (*site.Site, error) {
	return site.New(appConfig, newStore(), markup.New())
}
