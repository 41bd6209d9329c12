package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sevahub/relay/internal/logging"
	"github.com/sevahub/relay/internal/relay"
	"github.com/sevahub/relay/internal/server"
)

func main() {
	logging.Init()

	var opts server.Options
	flag.StringVar(&opts.Port, "port", "", "listen port (overrides RELAY_PORT)")
	flag.StringVar(&opts.AllowedOrigin, "origin", "", "allowed browser origin (overrides RELAY_ALLOWED_ORIGIN)")
	flag.StringVar(&opts.UploadDir, "upload-dir", "", "upload directory (overrides RELAY_UPLOAD_DIR)")
	flag.Parse()

	cfg := server.Load(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub()
	go hub.Run(ctx)

	srv := server.New(cfg, hub)
	httpSrv := srv.HTTPServer()

	go func() {
		<-ctx.Done()
		server.Shutdown(httpSrv, 10*time.Second)
	}()

	slog.Info("relay server listening", "addr", cfg.Port, "origin", cfg.AllowedOrigin)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
