package recipe

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ecoswap/internal/core/scrape"
	"ecoswap/internal/core/swap"
	"ecoswap/internal/pkg/common"
)

const (
	defaultCustomTitle = "Custom Recipe"
	supportedSitesNote = "We also support most recipe websites using structured data and intelligent parsing."
)

// AnalyzeURL 擷取網址上的食譜並產生替換分析
func (s *Service) AnalyzeURL(ctx context.Context, rawURL string) (*AnalysisResult, error) {
	u, err := common.ValidateRecipeURL(rawURL)
	if err != nil {
		return nil, err
	}
	url := u.String()

	r, cached, err := s.extract(ctx, url)
	if r == nil || !r.Sufficient() {
		common.LogWarn("食譜擷取失敗", zap.String("url", url), zap.Error(err))
		return nil, extractionError(r, err)
	}

	result := s.analyze(r)
	result.Cached = cached

	common.LogInfo("食譜分析完成",
		zap.String("id", result.ID),
		zap.String("url", url),
		zap.String("method", string(r.ExtractionMethod)),
		zap.Bool("cached", cached),
		zap.Int("non_vegan", result.Analysis.NonVeganCount),
		zap.Int("score", result.Analysis.SustainabilityScore),
	)
	return result, nil
}

// AnalyzeIngredients 分析呼叫端直接提供的食材，不經過擷取
func (s *Service) AnalyzeIngredients(req IngredientsRequest) (*AnalysisResult, error) {
	ingredients := common.CompactLines(req.Ingredients)
	if len(ingredients) == 0 {
		return nil, common.NewValidationError("At least one ingredient is required")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultCustomTitle
	}

	r := &common.RecipeData{
		Title:        title,
		Ingredients:  ingredients,
		Instructions: common.CompactLines(req.Instructions),
		Servings:     strings.TrimSpace(req.Servings),
	}

	result := s.analyze(r)
	common.LogInfo("食材分析完成",
		zap.String("id", result.ID),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("score", result.Analysis.SustainabilityScore),
	)
	return result, nil
}

func (s *Service) analyze(r *common.RecipeData) *AnalysisResult {
	analysis := s.analyzer.Analyze(r.Ingredients)
	return &AnalysisResult{
		ID:                  common.GenerateUUID(),
		Recipe:              r,
		Analysis:            analysis,
		EnvironmentalImpact: s.analyzer.Impact(analysis.Suggestions),
		EcoSwappedRecipe:    s.analyzer.Rewrite(r, analysis.Suggestions),
	}
}

// ValidateURL 檢查網址格式
func (s *Service) ValidateURL(rawURL string) URLValidation {
	u, err := common.ValidateRecipeURL(rawURL)
	if err != nil {
		msg := err.Error()
		var ce *common.CustomError
		if errors.As(err, &ce) {
			msg = ce.Message
		}
		return URLValidation{Valid: false, URL: strings.TrimSpace(rawURL), Message: msg}
	}
	return URLValidation{Valid: true, URL: u.String(), Message: "URL is valid"}
}

// SupportedSites 回傳有專屬選擇器的網站
func (s *Service) SupportedSites() SupportedSites {
	return SupportedSites{Sites: scrape.SupportedSites(), Note: supportedSitesNote}
}

// Usage 生成式擷取目前的用量
func (s *Service) Usage() UsageReport {
	report := UsageReport{
		HasCredential: s.opts.HasCredential,
		Provider:      s.opts.Provider,
		Model:         s.opts.Model,
	}
	if s.opts.Governor != nil {
		report.UsageSnapshot = s.opts.Governor.Snapshot()
	}
	return report
}

// Catalog 替換目錄
func (s *Service) Catalog() []swap.CatalogEntry {
	return s.analyzer.Catalog().Entries()
}
