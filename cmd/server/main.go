package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optimise-growth-tools/internal/ads"
	"optimise-growth-tools/internal/audit"
	"optimise-growth-tools/internal/config"
	"optimise-growth-tools/internal/fetcher"
	"optimise-growth-tools/internal/serp"
	"optimise-growth-tools/internal/storage"
	"optimise-growth-tools/internal/tracker"
	"optimise-growth-tools/internal/web"
	"optimise-growth-tools/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	l := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l.Errorf("load config: %v", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err = storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			l.Errorf("open sqlite store: %v", err)
			os.Exit(1)
		}
	default:
		store = storage.NewMemStore()
	}
	defer store.Close()

	if cfg.Serper.APIKey == "" {
		l.Warnf("SERPER_API_KEY not set - keyword positions will resolve as not found")
	}
	searcher := serp.NewClient(cfg.Serper.APIKey, cfg.Serper.BaseURL)

	adsClient := ads.NewClient(ads.Credentials{
		ClientID:       cfg.GoogleAds.ClientID,
		ClientSecret:   cfg.GoogleAds.ClientSecret,
		RefreshToken:   cfg.GoogleAds.RefreshToken,
		DeveloperToken: cfg.GoogleAds.DeveloperToken,
		CustomerID:     cfg.GoogleAds.CustomerID,
	})
	if !adsClient.Configured() {
		l.Warnf("google ads credentials missing - search volume will use heuristic fallback")
	}

	orch := tracker.New(searcher, adsClient,
		time.Duration(cfg.Tracker.DelayMS)*time.Millisecond,
		time.Duration(cfg.Tracker.RefreshDelayMS)*time.Millisecond,
		l)

	auditTimeout := time.Duration(cfg.Audit.TimeoutSec) * time.Second
	pages := fetcher.NewClient(auditTimeout, 5*time.Second, cfg.Audit.MaxBodySize)
	auditor := audit.New(pages, auditTimeout)

	server := web.NewServer(store, auditor, orch, cfg.Tracker.MaxKeywords, l)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}
