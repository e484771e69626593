package recipe

import (
	"ecoswap/internal/core/swap"
	"ecoswap/internal/pkg/common"
)

// AnalysisResult 一次完整分析的結果
type AnalysisResult struct {
	ID                  string                   `json:"id"`
	Recipe              *common.RecipeData       `json:"recipe"`
	Analysis            *swap.Analysis           `json:"analysis"`
	EnvironmentalImpact swap.EnvironmentalImpact `json:"environmentalImpact"`
	EcoSwappedRecipe    *swap.EcoSwappedRecipe   `json:"ecoSwappedRecipe"`
	Cached              bool                     `json:"cached"`
}

// IngredientsRequest 直接提供食材的分析請求
type IngredientsRequest struct {
	Ingredients  []string `json:"ingredients" binding:"required"`
	Title        string   `json:"title"`
	Instructions []string `json:"instructions"`
	Servings     string   `json:"servings"`
}

// URLValidation 網址檢查結果
type URLValidation struct {
	Valid   bool   `json:"valid"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// SupportedSites 有專屬選擇器的網站
type SupportedSites struct {
	Sites []string `json:"supportedSites"`
	Note  string   `json:"note"`
}

// UsageReport 生成式擷取的用量與設定
type UsageReport struct {
	common.UsageSnapshot
	HasCredential bool   `json:"hasCredential"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
}
