package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ecoswap/internal/core/ai"
	"ecoswap/internal/core/ai/cache"
	"ecoswap/internal/core/ai/governor"
	"ecoswap/internal/core/ai/provider"
	"ecoswap/internal/core/recipe"
	"ecoswap/internal/core/scrape"
	"ecoswap/internal/core/swap"
	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
)

// App 組裝好的服務與需要關閉的資源
type App struct {
	Config   *config.Config
	Recipe   *recipe.Service
	Governor *governor.Governor
	Cache    cache.Store

	provider provider.Provider
	renderer *scrape.ChromeRenderer
}

// New 依設定建立擷取流程、分析器與快取
func New(cfg *config.Config) (*App, error) {
	catalog, err := swap.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load substitution catalog: %w", err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	gov := governor.New(governor.ConfigFrom(cfg.Governor))
	p := ai.NewProvider(cfg)

	// 瀏覽器停用時保持 Renderer 為 nil
	var renderer scrape.Renderer
	var chrome *scrape.ChromeRenderer
	if cfg.Scraper.BrowserEnabled {
		chrome = scrape.NewChromeRenderer(cfg.Scraper)
		renderer = chrome
	}

	orchestrator := scrape.NewDefaultOrchestrator(
		scrape.NewHTTPFetcher(cfg.Scraper),
		renderer,
		scrape.NewGenerativeExtractor(p, gov, cfg.AI),
	)

	svc := recipe.NewService(orchestrator, swap.NewAnalyzer(catalog), recipe.Options{
		Cache:         store,
		Governor:      gov,
		HasCredential: cfg.HasCredential(),
		Provider:      cfg.AI.Provider,
		Model:         ai.ModelName(cfg),
	})

	common.LogInfo("服務初始化完成",
		zap.Int("catalog_entries", catalog.Len()),
		zap.Bool("cache_enabled", store != nil),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("browser_enabled", chrome != nil),
		zap.Bool("generative_enabled", p != nil),
		zap.Int("max_requests", cfg.Governor.MaxRequestsPerHour),
		zap.Float64("max_daily_cost", cfg.Governor.MaxDailyCost),
	)

	return &App{
		Config:   cfg,
		Recipe:   svc,
		Governor: gov,
		Cache:    store,
		provider: p,
		renderer: chrome,
	}, nil
}

// Close 關閉瀏覽器、生成式客戶端與快取
func (a *App) Close() error {
	var errs []error
	if a.renderer != nil {
		errs = append(errs, a.renderer.Close())
	}
	if a.provider != nil {
		errs = append(errs, a.provider.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	return errors.Join(errs...)
}
