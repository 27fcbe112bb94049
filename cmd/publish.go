package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/publish"
)

var (
	publishBucket string
	publishPrefix string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Uploads the built site to S3",
	Long: `The publish command uploads every file in the output directory to the
configured S3 bucket, under an optional key prefix. Run build first.
Credentials come from the standard AWS chain (environment, shared config,
instance role).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.Publish
		if publishBucket != "" {
			cfg.Bucket = publishBucket
		}
		if publishPrefix != "" {
			cfg.Prefix = publishPrefix
		}

		p, err := publish.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		_, err = p.Publish(cmd.Context(), appConfig.OutputDir)
		return err
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "destination bucket (overrides publish.bucket)")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "key prefix (overrides publish.prefix)")
	rootCmd.AddCommand(publishCmd)
}
