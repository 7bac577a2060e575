// Command prerender renders the product catalog into a static site at build time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"arcseva.org/seva-web/internal/catalog"
	"arcseva.org/seva-web/internal/config"
	"arcseva.org/seva-web/internal/observability"
	"arcseva.org/seva-web/internal/page"
)

func main() {
	var (
		envFile string
		srcDir  string
		outDir  string
	)
	flag.StringVar(&envFile, "env", ".env", "dotenv file merged under the process environment")
	flag.StringVar(&srcDir, "src", "", "site directory to render (defaults to SITE_PUBLIC_DIR)")
	flag.StringVar(&outDir, "out", "dist", "output directory")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if srcDir == "" {
		srcDir = cfg.Site.PublicDir
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if nested, err := within(srcDir, outDir); err != nil || nested {
		logger.Fatal("output directory must be outside the site directory",
			zap.String("src", srcDir), zap.String("out", outDir), zap.Error(err))
	}

	root := os.DirFS(srcDir)
	fetcher, err := catalog.NewFetcher(cfg.Catalog.BaseURL, cfg.Catalog.FetchTimeout, root)
	if err != nil {
		logger.Fatal("failed to initialise catalog fetcher", zap.Error(err))
	}
	loader := catalog.NewLoader(fetcher, logger.Named("catalog"), cfg.Catalog.Paths...)

	p := &prerenderer{
		hydrator: page.NewHydrator(loader,
			page.WithSiteTitle(cfg.Site.Title),
			page.WithLogger(logger.Named("page")),
		),
		assetBase: cfg.Site.AssetBase,
		logger:    logger,
	}
	st, err := p.run(ctx, root, outDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("prerender interrupted", zap.Error(err))
		} else {
			logger.Error("prerender failed", zap.Error(err))
		}
		os.Exit(1)
	}
	logger.Info("prerender complete",
		zap.String("src", srcDir),
		zap.String("out", outDir),
		zap.Int("pages", st.Pages),
		zap.Int("hydrated", st.Hydrated),
		zap.Int("copied", st.Copied),
		zap.Int("detail_deferred", st.Deferred),
	)
}
