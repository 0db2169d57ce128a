package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sentidash/internal/config"
	"sentidash/internal/dashboard"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
	"sentidash/internal/util"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), fmt.Sprintf("sentidash-client-%s.log", time.Now().Format("2006-01-02")))
	}
	logger, closer := util.NewFileLogger(cfg.Logging, logPath)
	defer closer.Close()

	client := upstream.New(cfg.Upstream.BaseURL,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithRateLimiter(util.NewRateLimiter(cfg.Upstream.RateLimit, cfg.Upstream.Burst)),
		upstream.WithLogger(logger),
	)
	svc := dashboard.NewService(client, dashboard.NewCatalog(cfg.Catalog.Products),
		dashboard.WithMergeOptions(
			series.WithDisplayLayout(cfg.Chart.DateLayout),
			series.WithLocation(cfg.Location()),
		),
		dashboard.WithLogger(logger),
	)
	logger.Info("sentidash client starting", "upstream", client.BaseURL(), "products", len(svc.Products()))

	p := tea.NewProgram(
		initialModel(svc, cfg.Chart.DateLayout, cfg.Upstream.Timeout, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
