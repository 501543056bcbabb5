// cmd/helpdeck/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/discord"
	"github.com/keshon/helpdeck/internal/logging"
	"github.com/keshon/helpdeck/internal/menu"
	"github.com/keshon/helpdeck/internal/plugins/builtin"
	"github.com/keshon/helpdeck/internal/plugins/core"
	"github.com/keshon/helpdeck/internal/plugins/mod"
	"github.com/keshon/helpdeck/internal/registry"
	"github.com/keshon/helpdeck/internal/server"
	"github.com/keshon/helpdeck/internal/storage"
	v "github.com/keshon/helpdeck/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	slog, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer slog.Sync()

	slog.Infow("starting bot", "app", v.AppName, "version", v.Version)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Fatalw("failed to create data dir", "error", err)
	}
	settings := config.LoadMenuSettings(filepath.Join(cfg.DataDir, "menu.json"), slog)

	store, err := storage.New(filepath.Join(cfg.DataDir, "helpdeck.json"))
	if err != nil {
		slog.Fatalw("failed to open storage", "error", err)
	}
	defer store.Close()

	reg := registry.New()
	core.Register(reg)
	mod.Register(reg)
	builtin.Register(reg)
	discord.RegisterSelf(reg)

	svc, err := menu.NewService(cfg, settings, reg, slog)
	if err != nil {
		slog.Fatalw("failed to build menu service", "error", err)
	}
	svc.StartPrewarm()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := discord.New(cfg, settings, svc, store, slog)
	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	if cfg.HTTPAddr != "" {
		srv := server.New(cfg.HTTPAddr, svc, slog)
		go func() {
			if err := srv.Run(ctx); err != nil {
				slog.Errorw("preview server error", "error", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		slog.Infow("received signal, shutting down", "signal", s.String())
		cancel()
	case err := <-errCh:
		if err != nil {
			slog.Errorw("bot error", "error", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := svc.Close(shutdownCtx); err != nil {
		slog.Warnw("menu service shutdown incomplete", "error", err)
	}

	slog.Infow("exited cleanly")
}
