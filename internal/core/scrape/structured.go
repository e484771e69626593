package scrape

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"ecoswap/internal/pkg/common"
)

// StructuredExtractor 解析 JSON-LD 中的 schema.org Recipe
type StructuredExtractor struct{}

// Parse 找不到 Recipe 物件時回傳 nil
func (StructuredExtractor) Parse(doc *goquery.Document) *common.RecipeData {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			common.LogDebug("略過無法解析的 JSON-LD", zap.Int("index", i), zap.Error(err))
			return true
		}
		found = findRecipeObject(data)
		return found == nil
	})
	if found == nil {
		return nil
	}

	return &common.RecipeData{
		Title:            ldText(found["name"]),
		Description:      ldText(found["description"]),
		Image:            ldImage(found["image"]),
		Ingredients:      ldIngredients(found["recipeIngredient"], found["ingredients"]),
		Instructions:     ldInstructions(found["recipeInstructions"]),
		PrepTime:         ldText(found["prepTime"]),
		CookTime:         ldText(found["cookTime"]),
		TotalTime:        ldText(found["totalTime"]),
		Servings:         firstNonEmpty(ldText(found["recipeYield"]), ldText(found["yield"])),
		Author:           ldAuthor(found["author"]),
		Category:         ldJoined(found["recipeCategory"]),
		Cuisine:          ldJoined(found["recipeCuisine"]),
		Nutrition:        ldNutrition(found["nutrition"]),
		ExtractionMethod: common.MethodStructured,
	}
}

// findRecipeObject 在頂層、陣列、@graph 與 mainEntity 中尋找 Recipe
func findRecipeObject(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if r := findRecipeObject(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if r := findRecipeObject(t["@graph"]); r != nil {
			return r
		}
		if r := findRecipeObject(t["mainEntity"]); r != nil {
			return r
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe") || strings.HasSuffix(t, "/Recipe")
	case []any:
		for _, item := range t {
			if isRecipeType(item) {
				return true
			}
		}
	}
	return false
}

// ldText 字串、數字或陣列第一個元素
func ldText(v any) string {
	switch t := v.(type) {
	case string:
		return common.CollapseWhitespace(html.UnescapeString(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		for _, item := range t {
			if s := ldText(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return firstNonEmpty(ldText(t["text"]), ldText(t["name"]), ldText(t["@value"]))
	}
	return ""
}

func ldJoined(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ldText(v)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := ldText(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func ldImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := ldImage(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return firstNonEmpty(ldImage(t["url"]), ldImage(t["contentUrl"]))
	}
	return ""
}

func ldAuthor(v any) string {
	switch t := v.(type) {
	case string:
		return ldText(t)
	case []any:
		for _, item := range t {
			if s := ldAuthor(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return ldText(t["name"])
	}
	return ""
}

func ldIngredients(values ...any) []string {
	for _, v := range values {
		var out []string
		switch t := v.(type) {
		case string:
			out = append(out, ldText(t))
		case []any:
			for _, item := range t {
				out = append(out, ldText(item))
			}
		}
		if out = common.CompactLines(out); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// ldInstructions 攤平 HowToStep 與 HowToSection
func ldInstructions(v any) []string {
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			for _, line := range strings.Split(t, "\n") {
				out = append(out, ldText(line))
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			if steps, ok := t["itemListElement"]; ok {
				walk(steps)
				return
			}
			out = append(out, firstNonEmpty(ldText(t["text"]), ldText(t["name"])))
		}
	}
	walk(v)
	return common.CompactLines(out)
}

func ldNutrition(v any) *common.Nutrition {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &common.Nutrition{
		Calories: ldText(m["calories"]),
		Protein:  ldText(m["proteinContent"]),
		Carbs:    ldText(m["carbohydrateContent"]),
		Fat:      ldText(m["fatContent"]),
		Fiber:    ldText(m["fiberContent"]),
		Sugar:    ldText(m["sugarContent"]),
		Sodium:   ldText(m["sodiumContent"]),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
