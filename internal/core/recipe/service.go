package recipe

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"

	"ecoswap/internal/core/ai/cache"
	"ecoswap/internal/core/ai/governor"
	"ecoswap/internal/core/scrape"
	"ecoswap/internal/core/swap"
	"ecoswap/internal/pkg/common"
)

// Extractor 擷取食譜，失敗時仍回傳帶有失敗方法的結果
type Extractor interface {
	Extract(ctx context.Context, url string) (*common.RecipeData, error)
}

// Options 服務的選用元件
type Options struct {
	Cache         cache.Store
	Governor      *governor.Governor
	HasCredential bool
	Provider      string
	Model         string
}

// Service 食譜分析服務
type Service struct {
	extractor Extractor
	analyzer  *swap.Analyzer
	opts      Options
}

// NewService 創建新的食譜分析服務
func NewService(extractor Extractor, analyzer *swap.Analyzer, opts Options) *Service {
	return &Service{
		extractor: extractor,
		analyzer:  analyzer,
		opts:      opts,
	}
}

// extract 先查快取，只有足夠的結果才寫入快取
func (s *Service) extract(ctx context.Context, url string) (*common.RecipeData, bool, error) {
	key := cache.Key(url)
	if r := s.getFromCache(ctx, key); r != nil {
		return r, true, nil
	}

	r, err := s.extractor.Extract(ctx, url)
	if r != nil && r.Sufficient() {
		s.setToCache(ctx, key, r)
	}
	return r, false, err
}

// getFromCache 從緩存獲取數據
func (s *Service) getFromCache(ctx context.Context, key string) *common.RecipeData {
	if s.opts.Cache == nil {
		return nil
	}

	value, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	var r common.RecipeData
	if err := common.ParseJSON(value, &r); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !r.Sufficient() {
		return nil
	}
	return &r
}

// setToCache 將數據存入緩存
func (s *Service) setToCache(ctx context.Context, key string, r *common.RecipeData) {
	if s.opts.Cache == nil {
		return
	}

	value, err := common.ToJSON(r)
	if err != nil {
		common.LogWarn("序列化快取內容失敗", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.opts.Cache.Set(ctx, key, value); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
	}
}

// extractionError 將擷取失敗轉換為對外錯誤
func extractionError(r *common.RecipeData, err error) error {
	if r != nil && r.ExtractionMethod == common.MethodError {
		return common.ErrInternalError.Wrap(err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return common.ErrUpstreamUnreachable.Wrap(err)
	}
	if isTimeout(err) {
		return common.ErrUpstreamTimeout.Wrap(err)
	}
	return common.ErrExtractionFailed.Wrap(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, scrape.ErrRenderTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
