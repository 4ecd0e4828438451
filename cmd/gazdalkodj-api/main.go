package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/api"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/config"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/db"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/savefile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	var store game.Persister
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := savefile.NewPGStore(pool, cfg.SaveSlot)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("db schema init failed", "err", err)
			os.Exit(1)
		}
		store = pg
		logger.Info("using postgres save store", "slot", cfg.SaveSlot)
	default:
		store = savefile.NewFileStore(cfg.SaveFile)
		logger.Info("using file save store", "path", cfg.SaveFile)
	}

	gameSvc := game.NewService(store, logger)
	if err := gameSvc.Load(ctx); err != nil {
		logger.Warn("continuing with a new game", "err", err)
	}

	server := api.New(logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("gazdalkodj api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
