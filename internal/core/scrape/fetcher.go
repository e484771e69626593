package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"ecoswap/internal/infrastructure/config"
)

// HTTPFetcher 以 resty 抓取靜態頁面
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher 創建抓取器，逾時與轉址次數取自設定
func NewHTTPFetcher(cfg config.ScraperConfig) *HTTPFetcher {
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects)).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		})

	return &HTTPFetcher{client: client}
}

// Fetch 取得頁面 HTML
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode())
	}

	ct := strings.ToLower(resp.Header().Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, ct)
	}

	return resp.String(), nil
}
