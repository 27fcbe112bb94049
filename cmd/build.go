package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/site"
)

var keepGoing bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site into the output directory",
	Long: `The build command renders every page, post and tutorial from the content
directory, copies static assets from './static/', and writes sitemap.xml,
robots.txt and the code stylesheet into the configured output directory
(default './public/'). The output directory is cleared first.

By default the first post that cannot be read aborts the build. With
--keep-going such posts are skipped and reported together at the end, and
the command still exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSite()
		if err != nil {
			return err
		}
		return s.Build(site.BuildOptions{
			OutputDir: appConfig.OutputDir,
			StaticDir: conventionalStaticDir,
			KeepGoing: keepGoing,
		})
	},
}

func init() {
	buildCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip posts that fail to read and report them at the end")
	rootCmd.AddCommand(buildCmd)
}
