package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"sentidash/internal/api"
	"sentidash/internal/chart"
	"sentidash/internal/config"
	"sentidash/internal/dashboard"
	"sentidash/internal/httpapi"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
	"sentidash/internal/util"
)

func main() {
	// Load config.
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger, closer := util.NewLogger(cfg.Logging)
	defer closer.Close()
	util.SetDefault(logger)

	client := upstream.New(cfg.Upstream.BaseURL,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithRateLimiter(util.NewRateLimiter(cfg.Upstream.RateLimit, cfg.Upstream.Burst)),
		upstream.WithLogger(logger),
	)

	catalog := dashboard.NewCatalog(cfg.Catalog.Products)
	svc := dashboard.NewService(client, catalog,
		dashboard.WithMergeOptions(
			series.WithDisplayLayout(cfg.Chart.DateLayout),
			series.WithLocation(cfg.Location()),
		),
		dashboard.WithLogger(logger),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The configured list stays in use until the upstream one is fetched.
	if cfg.Catalog.RefreshCron != "" {
		refresher := dashboard.NewRefresher(catalog, client, logger)
		go func() {
			if err := refresher.RefreshNow(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("initial catalog refresh failed", "error", err)
			}
		}()
		if err := refresher.Start(cfg.Catalog.RefreshCron); err != nil {
			log.Fatalf("starting catalog refresh: %v", err)
		}
		defer refresher.Stop()
	}

	web := httpapi.NewDashboardServer(svc, client, chart.Options{
		Width:      cfg.Chart.Width,
		Height:     cfg.Chart.Height,
		DateLayout: cfg.Chart.DateLayout,
	}, logger)
	srv := api.NewServer(cfg, web.Handler(), api.NewDashboardService(svc, logger), logger)

	logger.Info("sentidash server starting",
		"http", cfg.HTTPAddr(),
		"grpc_port", cfg.Server.GRPCPort,
		"upstream", client.BaseURL(),
		"products", len(catalog.Products()),
	)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		return
	}
	logger.Info("sentidash server stopped")
}
