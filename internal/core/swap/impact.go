package swap

import "math"

// savings 每份替換可省下的碳排（kg CO2e）與用水（公升）
type savings struct {
	carbon float64
	water  float64
}

var (
	savingsTable = map[string]savings{
		"beef":    {carbon: 6.0, water: 1500},
		"lamb":    {carbon: 5.0, water: 1000},
		"pork":    {carbon: 1.8, water: 500},
		"chicken": {carbon: 1.2, water: 400},
		"fish":    {carbon: 1.0, water: 300},
		"salmon":  {carbon: 1.1, water: 300},
		"milk":    {carbon: 0.6, water: 250},
		"butter":  {carbon: 0.9, water: 200},
		"cheese":  {carbon: 1.1, water: 250},
		"cream":   {carbon: 0.7, water: 200},
		"yogurt":  {carbon: 0.5, water: 150},
		"eggs":    {carbon: 0.4, water: 100},
		"egg":     {carbon: 0.2, water: 50},
		"honey":   {carbon: 0.1, water: 20},
	}

	// 未列出的食材給一個小的非零值
	defaultSavings = savings{carbon: 0.3, water: 50}

	highImpactKeys = map[string]bool{
		"beef": true, "pork": true, "lamb": true,
	}

	// 乳製品另以分類判斷
	mediumImpactKeys = map[string]bool{
		"chicken": true, "fish": true, "salmon": true,
	}
)

const (
	veganShareWeight = 60.0
	highImpactBonus  = 15.0
	mediumBonus      = 10.0
	lowBonus         = 5.0
	landUseFactor    = 2.0
)

// Report 分析摘要
type Report struct {
	TotalIngredients    int `json:"totalIngredients"`
	NonVeganCount       int `json:"nonVeganCount"`
	VeganCount          int `json:"veganCount"`
	SustainabilityScore int `json:"sustainabilityScore"`
}

// EnvironmentalImpact 替換後的環境效益估計
type EnvironmentalImpact struct {
	CarbonFootprintReduction float64 `json:"carbonFootprintReduction"`
	WaterUsageReduction      float64 `json:"waterUsageReduction"`
	LandUseReduction         float64 `json:"landUseReduction"`
}

// Estimator 依固定對照表估算分數與環境效益
type Estimator struct{}

// NewEstimator 創建估算器
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Savings 單一食材的碳排與用水節省量
func (e *Estimator) Savings(key string) (carbon, water float64) {
	s, ok := savingsTable[key]
	if !ok {
		s = defaultSavings
	}
	return s.carbon, s.water
}

// Bonus 替換單一食材的加分
func (e *Estimator) Bonus(m MatchedIngredient) float64 {
	switch {
	case highImpactKeys[m.MatchedKey]:
		return highImpactBonus
	case mediumImpactKeys[m.MatchedKey], m.Category == CategoryDairy:
		return mediumBonus
	default:
		return lowBonus
	}
}

// Score 計算分析摘要，total 為食材行數
func (e *Estimator) Score(total int, matches []MatchedIngredient) Report {
	if total < len(matches) {
		total = len(matches)
	}
	r := Report{
		TotalIngredients: total,
		NonVeganCount:    len(matches),
		VeganCount:       total - len(matches),
	}
	if total == 0 {
		return r
	}

	score := veganShareWeight * float64(r.VeganCount) / float64(total)
	for _, m := range matches {
		score += e.Bonus(m)
	}
	r.SustainabilityScore = int(math.Round(math.Max(0, math.Min(100, score))))
	return r
}

// Impact 加總所有替換建議的節省量
func (e *Estimator) Impact(suggestions []Suggestion) EnvironmentalImpact {
	var carbon, water float64
	for _, s := range suggestions {
		carbon += s.CarbonSavings
		water += s.WaterSavings
	}
	return EnvironmentalImpact{
		CarbonFootprintReduction: round2(carbon),
		WaterUsageReduction:      round2(water),
		LandUseReduction:         round2(carbon * landUseFactor),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
