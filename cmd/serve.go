package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/portfolio/internal/logger"
	"github.com/Bitlatte/portfolio/internal/server"
	"github.com/Bitlatte/portfolio/internal/watch"
)

var (
	serverPort int
	watchFiles bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site and the editor, re-rendering on change",
	Long: `The serve command renders pages on demand straight from the content
directory and caches them in memory. With --watch (the default) the content
and static directories are watched and the cache is dropped whenever a file
changes. The editor is available at /admin/editor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSite()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if watchFiles {
			w, err := watch.New(func() {
				logger.Info("content changed, dropping cached pages")
				s.Invalidate()
			}, watch.DefaultDebounce, appConfig.ContentDir, conventionalStaticDir)
			if err != nil {
				return err
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("watcher stopped", "error", err)
				}
			}()
		}

		addr := appConfig.Server.Addr
		if serverPort != 0 {
			addr = fmt.Sprintf(":%d", serverPort)
		}
		logger.Info("press Ctrl+C to stop the server", "addr", addr)

		srv := server.New(s, server.WithStaticDir(conventionalStaticDir))
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "port to serve the site on (overrides server.addr)")
	serveCmd.Flags().BoolVar(&watchFiles, "watch", true, "drop cached pages when content changes")
	rootCmd.AddCommand(serveCmd)
}
