package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arcseva.org/seva-web/internal/catalog"
	"arcseva.org/seva-web/internal/config"
	"arcseva.org/seva-web/internal/handlers"
	mw "arcseva.org/seva-web/internal/middleware"
	"arcseva.org/seva-web/internal/observability"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "dotenv file merged under the process environment")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", verr.Fields())
		} else {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		}
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	root := os.DirFS(cfg.Site.PublicDir)
	fetcher, err := catalog.NewFetcher(cfg.Catalog.BaseURL, cfg.Catalog.FetchTimeout, root)
	if err != nil {
		logger.Fatal("failed to initialise catalog fetcher", zap.Error(err))
	}
	loader := catalog.NewLoader(fetcher, logger.Named("catalog"), cfg.Catalog.Paths...)

	site := handlers.NewSiteHandlers(root, loader,
		handlers.WithSiteTitle(cfg.Site.Title),
		handlers.WithAssetBase(cfg.Site.AssetBase),
		handlers.WithRateLimiter(mw.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, nil)),
		handlers.WithLogger(logger),
	)
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger.Named("http"),
		Site:           site,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(
		zap.String("addr", server.Addr),
		zap.String("public_dir", cfg.Site.PublicDir),
	)
	go func() {
		serverLogger.Info("seva web listening", zap.Strings("catalog_paths", loader.Candidates()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
