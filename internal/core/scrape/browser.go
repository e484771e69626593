package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
)

const partialCaptureTimeout = 3 * time.Second

// ChromeRenderer 共用一個長駐的無頭瀏覽器，每次渲染開新分頁
type ChromeRenderer struct {
	cfg config.ScraperConfig

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeRenderer 瀏覽器在第一次渲染時才啟動
func NewChromeRenderer(cfg config.ScraperConfig) *ChromeRenderer {
	return &ChromeRenderer{cfg: cfg}
}

// browser 取得瀏覽器 context，已關閉時重新啟動
func (r *ChromeRenderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, nil
	}
	r.closeLocked()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: start browser: %w", ErrRenderFailed, err)
	}

	common.LogInfo("無頭瀏覽器已啟動", zap.Bool("headless", r.cfg.Headless))
	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	return browserCtx, nil
}

// Render 導覽逾時時回傳已取得的部分 HTML 與 ErrRenderTimeout
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, err := r.browser()
	if err != nil {
		return "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if err := chromedp.Run(tabCtx); err != nil {
		return "", fmt.Errorf("%w: open tab: %w", ErrRenderFailed, err)
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, r.cfg.RenderTimeout)
	defer cancelNav()

	var html string
	err = chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err == nil {
		return html, nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		partial := r.partialHTML(tabCtx)
		common.LogWarn("頁面渲染逾時",
			zap.String("url", url),
			zap.Duration("timeout", r.cfg.RenderTimeout),
			zap.Int("partial_bytes", len(partial)),
		)
		return partial, fmt.Errorf("%w after %s", ErrRenderTimeout, r.cfg.RenderTimeout)
	}

	return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
}

func (r *ChromeRenderer) partialHTML(tabCtx context.Context) string {
	if tabCtx.Err() != nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(tabCtx, partialCaptureTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return ""
	}
	return html
}

// Close 關閉瀏覽器
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
	return nil
}

func (r *ChromeRenderer) closeLocked() {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	r.browserCtx = nil
	r.browserCancel = nil
	r.allocCancel = nil
}
