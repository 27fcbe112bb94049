package cmd

import (
	"github.com/spf13/cobra"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Prints sitemap.xml to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSite()
		if err != nil {
			return err
		}
		data, err := s.Data()
		if err != nil {
			return err
		}
		return s.Sitemap(cmd.OutOrStdout(), data)
	},
}

func init() {
	rootCmd.AddCommand(sitemapCmd)
}
