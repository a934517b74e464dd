package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/config"
	"github.com/sirhB/tickwatch/engine"
	"github.com/sirhB/tickwatch/feed"
	"github.com/sirhB/tickwatch/notify"
	"github.com/sirhB/tickwatch/server"
	"github.com/sirhB/tickwatch/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tick loop and the HTTP/WS gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		cfg.Store.DBPath = dbPath
	}
	return cfg, cfg.Validate()
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	db, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	interval, err := cfg.Feed.ParseInterval()
	if err != nil {
		return err
	}

	f, err := feed.NewSim(cfg.Feed.Symbols, cfg.Feed.Seed, time.Now())
	if err != nil {
		return err
	}

	book, err := alerts.NewBook(db, logger)
	if err != nil {
		return err
	}

	var deliverer notify.Deliverer = notify.Nop{}
	if cfg.Notify.Desktop {
		deliverer = notify.Desktop{}
	}
	notes, err := notify.NewLog(cfg.Notify.Cap, db, deliverer, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Options{
		Feed:         f,
		Book:         book,
		Notes:        notes,
		TickInterval: interval,
		QueueDepth:   cfg.Server.QueueDepth,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(eng, logger).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
