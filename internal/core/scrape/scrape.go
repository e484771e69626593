package scrape

import (
	"context"
	"errors"

	"ecoswap/internal/pkg/common"
)

var (
	// ErrFetchFailed 靜態抓取失敗
	ErrFetchFailed = errors.New("page fetch failed")
	// ErrUnsupportedContent 回應不是 HTML
	ErrUnsupportedContent = errors.New("unsupported content type")
	// ErrRenderTimeout 瀏覽器導覽逾時，可能帶有部分內容
	ErrRenderTimeout = errors.New("page render timed out")
	// ErrRenderFailed 瀏覽器渲染失敗
	ErrRenderFailed = errors.New("page render failed")
	// ErrNoCredential 未設定生成式服務金鑰
	ErrNoCredential = errors.New("no completion service credential configured")
	// ErrInvalidModelOutput 模型輸出不是合格的食譜 JSON
	ErrInvalidModelOutput = errors.New("invalid model output")
	// ErrExhausted 所有擷取策略都無法取得食譜
	ErrExhausted = errors.New("all extraction strategies exhausted")
)

// Fetcher 不執行 JavaScript 的頁面抓取
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Renderer 以無頭瀏覽器取得渲染後的頁面
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Outcome 單一策略的結果
type Outcome int

const (
	OutcomeSufficient Outcome = iota
	OutcomeInsufficient
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSufficient:
		return "sufficient"
	case OutcomeInsufficient:
		return "insufficient"
	default:
		return "failed"
	}
}

// Attempt 策略執行結果；Recipe 只在 Sufficient 時保證非 nil
type Attempt struct {
	Outcome Outcome
	Recipe  *common.RecipeData
	Err     error
}

func sufficient(r *common.RecipeData) Attempt {
	return Attempt{Outcome: OutcomeSufficient, Recipe: r}
}

func insufficient(r *common.RecipeData) Attempt {
	return Attempt{Outcome: OutcomeInsufficient, Recipe: r}
}

func failed(err error) Attempt {
	return Attempt{Outcome: OutcomeFailed, Err: err}
}

// Job 一次擷取在各策略間共享的狀態
type Job struct {
	URL string
	// HTML 目前取得的最佳頁面內容，渲染結果優先於靜態抓取
	HTML string
	// RenderTimedOut 瀏覽器逾時，HTML 可能只是部分內容
	RenderTimedOut bool
}

// Strategy 擷取策略
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, job *Job) Attempt
}
