package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hn-discuss/internal/api"
	"hn-discuss/worker"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		handler := api.NewHandler(svc.agg, svc.filters)
		srv := &worker.HTTPServer{Addr: cfg.Server.Addr, Handler: handler.Router()}

		mgr := worker.NewManager(srv)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		slog.Info("serve: starting api", "addr", cfg.Server.Addr, "filters", svc.filters)
		return mgr.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}
