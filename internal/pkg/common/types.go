package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractionMethod 食譜擷取方式
type ExtractionMethod string

const (
	MethodStructured     ExtractionMethod = "structured"
	MethodHeuristic      ExtractionMethod = "heuristic"
	MethodDynamic        ExtractionMethod = "dynamic"
	MethodDynamicTimeout ExtractionMethod = "dynamic-timeout"
	MethodGenerative     ExtractionMethod = "generative"
	MethodFailed         ExtractionMethod = "failed"
	MethodError          ExtractionMethod = "error"
)

// Nutrition 營養標示（原樣保留頁面上的字串）
type Nutrition struct {
	Calories string `json:"calories,omitempty"`
	Protein  string `json:"protein,omitempty"`
	Carbs    string `json:"carbs,omitempty"`
	Fat      string `json:"fat,omitempty"`
	Fiber    string `json:"fiber,omitempty"`
	Sugar    string `json:"sugar,omitempty"`
	Sodium   string `json:"sodium,omitempty"`
}

// UsageSnapshot 生成式服務用量快照
type UsageSnapshot struct {
	RequestCount int             `json:"requestCount"`
	DailyCost    decimal.Decimal `json:"dailyCost"`
	MaxRequests  int             `json:"maxRequests"`
	MaxDailyCost decimal.Decimal `json:"maxDailyCost"`
	TokensUsed   int             `json:"tokensUsed,omitempty"`
	CostThisCall decimal.Decimal `json:"costThisCall"`
	LastReset    time.Time       `json:"lastReset"`
}

// RecipeData 單次擷取的結果
type RecipeData struct {
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Image            string           `json:"image,omitempty"`
	Ingredients      []string         `json:"ingredients"`
	Instructions     []string         `json:"instructions"`
	PrepTime         string           `json:"prepTime,omitempty"`
	CookTime         string           `json:"cookTime,omitempty"`
	TotalTime        string           `json:"totalTime,omitempty"`
	Servings         string           `json:"servings,omitempty"`
	Author           string           `json:"author,omitempty"`
	Category         string           `json:"category,omitempty"`
	Cuisine          string           `json:"cuisine,omitempty"`
	Nutrition        *Nutrition       `json:"nutrition,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	GenerativeUsage  *UsageSnapshot   `json:"llmUsage,omitempty"`
	SourceURL        string           `json:"sourceUrl,omitempty"`
	ScrapedAt        time.Time        `json:"scrapedAt"`
	Error            string           `json:"error,omitempty"`

	// RawHTML 擷取時取得的頁面內容，只供生成式擷取使用
	RawHTML string `json:"-"`
}

// Sufficient 是否同時具備標題與食材
func (r *RecipeData) Sufficient() bool {
	return r != nil && strings.TrimSpace(r.Title) != "" && len(r.Ingredients) > 0
}

// Clean 去除空白項目並修剪欄位
func (r *RecipeData) Clean() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Ingredients = CompactLines(r.Ingredients)
	r.Instructions = CompactLines(r.Instructions)
}

// CompactLines 修剪每一行並移除空行，永不回傳 nil
func CompactLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// CollapseWhitespace 合併連續空白
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
