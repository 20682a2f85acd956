package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sketchstudio/internal/preview"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sketch library and renderer over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		repo, err := openLibrary()
		if err != nil {
			return err
		}
		defer repo.Close()

		addr := serveAddr
		if addr == "" && cfg != nil {
			addr = cfg.PreviewAddr
		}
		srv := preview.New(repo, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warnf("shutdown: %v", err)
			}
		}()
		okf("serving %s on http://%s", repo.FilePath(), addr)
		return srv.Listen(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default preview_addr from config)")
	rootCmd.AddCommand(serveCmd)
}
