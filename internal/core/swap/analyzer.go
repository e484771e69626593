package swap

import (
	"strings"

	"ecoswap/internal/pkg/common"
)

// Suggestion 單一食材的替換建議
type Suggestion struct {
	Original      string   `json:"original"`
	MatchedKey    string   `json:"matchedKey"`
	Alternatives  []string `json:"alternatives"`
	Recommended   string   `json:"recommended"`
	Ratio         string   `json:"ratio"`
	Notes         string   `json:"notes"`
	Quantity      string   `json:"quantity"`
	Unit          string   `json:"unit"`
	Category      Category `json:"category"`
	CarbonSavings float64  `json:"carbonSavings"`
	WaterSavings  float64  `json:"waterSavings"`
}

// Details 分析細節
type Details struct {
	CategoryCounts   map[Category]int `json:"categoryCounts"`
	MatchedKeys      []string         `json:"matchedKeys"`
	PlantBasedLines  []string         `json:"plantBasedLines"`
	IgnoredLineCount int              `json:"ignoredLineCount"`
}

// Analysis 食材清單的完整分析結果
type Analysis struct {
	Report
	NonVegan        []MatchedIngredient `json:"nonVeganIngredients"`
	Suggestions     []Suggestion        `json:"veganAlternatives"`
	IsVeganFriendly bool                `json:"isVeganFriendly"`
	Details         Details             `json:"analysisDetails"`
}

// Analyzer 組合目錄、比對器與估算器
type Analyzer struct {
	catalog   *Catalog
	matcher   *Matcher
	estimator *Estimator
}

// NewAnalyzer 創建分析器
func NewAnalyzer(c *Catalog) *Analyzer {
	return &Analyzer{
		catalog:   c,
		matcher:   NewMatcher(c),
		estimator: NewEstimator(),
	}
}

// Catalog 回傳使用中的目錄
func (a *Analyzer) Catalog() *Catalog {
	return a.catalog
}

// Analyze 比對每一行食材並產生替換建議，空白行不計入總數
func (a *Analyzer) Analyze(ingredients []string) *Analysis {
	result := &Analysis{
		NonVegan:    make([]MatchedIngredient, 0),
		Suggestions: make([]Suggestion, 0),
		Details: Details{
			CategoryCounts:  make(map[Category]int),
			MatchedKeys:     make([]string, 0),
			PlantBasedLines: make([]string, 0),
		},
	}

	total := 0
	seenKeys := make(map[string]bool)
	for _, line := range ingredients {
		if strings.TrimSpace(line) == "" {
			result.Details.IgnoredLineCount++
			continue
		}
		total++

		m := a.matcher.Match(line)
		if m == nil {
			if a.matcher.IsPlantBased(line) {
				result.Details.PlantBasedLines = append(result.Details.PlantBasedLines, strings.TrimSpace(line))
			}
			continue
		}

		result.NonVegan = append(result.NonVegan, *m)
		result.Suggestions = append(result.Suggestions, a.suggest(*m))
		result.Details.CategoryCounts[m.Category]++
		if !seenKeys[m.MatchedKey] {
			seenKeys[m.MatchedKey] = true
			result.Details.MatchedKeys = append(result.Details.MatchedKeys, m.MatchedKey)
		}
	}

	result.Report = a.estimator.Score(total, result.NonVegan)
	result.IsVeganFriendly = result.NonVeganCount == 0
	return result
}

func (a *Analyzer) suggest(m MatchedIngredient) Suggestion {
	entry, _ := a.catalog.Lookup(m.MatchedKey)
	carbon, water := a.estimator.Savings(m.MatchedKey)
	alts := make([]string, len(entry.Alternatives))
	copy(alts, entry.Alternatives)
	return Suggestion{
		Original:      m.Original,
		MatchedKey:    m.MatchedKey,
		Alternatives:  alts,
		Recommended:   entry.DefaultAlternative,
		Ratio:         entry.Ratio,
		Notes:         entry.Notes,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		Category:      m.Category,
		CarbonSavings: carbon,
		WaterSavings:  water,
	}
}

// Impact 估算替換建議的環境效益
func (a *Analyzer) Impact(suggestions []Suggestion) EnvironmentalImpact {
	return a.estimator.Impact(suggestions)
}

// Rewrite 產生替換後的食譜
func (a *Analyzer) Rewrite(recipe *common.RecipeData, suggestions []Suggestion) *EcoSwappedRecipe {
	return Rewrite(recipe, suggestions)
}
