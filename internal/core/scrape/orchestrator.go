package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ecoswap/internal/pkg/common"
	"ecoswap/internal/pkg/metrics"
)

const exhaustedMessage = "Could not extract essential recipe data (title and ingredients required) using any method"

// Orchestrator 依序執行擷取策略，遇到第一個足夠的結果即停止
type Orchestrator struct {
	strategies []Strategy
	now        func() time.Time
}

// NewOrchestrator 以指定順序的策略創建
func NewOrchestrator(strategies ...Strategy) *Orchestrator {
	return &Orchestrator{strategies: strategies, now: time.Now}
}

// NewDefaultOrchestrator 靜態抓取、瀏覽器渲染、生成式擷取，最後解析逾時的部分內容。
// renderer 可為 nil。
func NewDefaultOrchestrator(fetcher Fetcher, renderer Renderer, generative *GenerativeExtractor) *Orchestrator {
	return NewOrchestrator(
		NewStaticStrategy(fetcher),
		NewDynamicStrategy(renderer),
		NewGenerativeStrategy(generative),
		NewPartialRenderStrategy(),
	)
}

// Extract 一律回傳非 nil 的結果。全部策略失敗時結果的方法為 failed 或 error，
// 同時回傳包裝 ErrExhausted 與各策略失敗原因的錯誤。
func (o *Orchestrator) Extract(ctx context.Context, url string) (*common.RecipeData, error) {
	job := &Job{URL: url}
	var causes []error

	for _, s := range o.strategies {
		a, panicErr := o.attempt(ctx, s, job)
		if panicErr != nil {
			common.LogError("擷取策略發生 panic",
				zap.String("url", url),
				zap.String("strategy", s.Name()),
				zap.Error(panicErr),
			)
			return o.terminal(url, common.MethodError, panicErr.Error()), fmt.Errorf("%w: %w", ErrExhausted, panicErr)
		}

		switch a.Outcome {
		case OutcomeSufficient:
			r := a.Recipe
			r.Clean()
			r.SourceURL = url
			r.ScrapedAt = o.now().UTC()
			metrics.ExtractionsTotal.WithLabelValues(string(r.ExtractionMethod)).Inc()
			common.LogInfo("食譜擷取成功",
				zap.String("url", url),
				zap.String("method", string(r.ExtractionMethod)),
				zap.String("title", r.Title),
				zap.Int("ingredients", len(r.Ingredients)),
				zap.Int("instructions", len(r.Instructions)),
			)
			return r, nil
		case OutcomeFailed:
			causes = append(causes, fmt.Errorf("%s: %w", s.Name(), a.Err))
		}
	}

	common.LogWarn("所有擷取策略皆失敗", zap.String("url", url), zap.Errors("causes", causes))
	err := ErrExhausted
	if len(causes) > 0 {
		err = fmt.Errorf("%w: %w", ErrExhausted, errors.Join(causes...))
	}
	return o.terminal(url, common.MethodFailed, exhaustedMessage), err
}

func (o *Orchestrator) attempt(ctx context.Context, s Strategy, job *Job) (a Attempt, panicErr error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			panicErr = fmt.Errorf("strategy %s panicked: %v", s.Name(), rec)
			metrics.ExtractionAttempts.WithLabelValues(s.Name(), OutcomeFailed.String()).Inc()
		}
	}()

	// 呼叫端的取消不傳入各階段，各階段只受自己的逾時限制
	a = s.Attempt(context.WithoutCancel(ctx), job)
	elapsed := time.Since(start)

	metrics.ExtractionAttempts.WithLabelValues(s.Name(), a.Outcome.String()).Inc()
	metrics.ExtractionDuration.WithLabelValues(s.Name()).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("url", job.URL),
		zap.String("strategy", s.Name()),
		zap.String("outcome", a.Outcome.String()),
		zap.Duration("duration", elapsed),
	}
	if a.Err != nil {
		fields = append(fields, zap.Error(a.Err))
	}
	common.LogDebug("擷取策略完成", fields...)
	return a, nil
}

func (o *Orchestrator) terminal(url string, method common.ExtractionMethod, message string) *common.RecipeData {
	metrics.ExtractionsTotal.WithLabelValues(string(method)).Inc()
	return &common.RecipeData{
		Ingredients:      []string{},
		Instructions:     []string{},
		ExtractionMethod: method,
		SourceURL:        url,
		ScrapedAt:        o.now().UTC(),
		Error:            message,
	}
}
