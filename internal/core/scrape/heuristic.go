package scrape

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"ecoswap/internal/pkg/common"
)

const (
	minIngredientChars  = 3
	minInstructionChars = 10
	minParagraphChars   = 20
	descriptionMaxChars = 200
)

// HeuristicExtractor 以 CSS 選擇器表擷取食譜
type HeuristicExtractor struct{}

// Parse 欄位找不到時保持空值
func (HeuristicExtractor) Parse(doc *goquery.Document, pageURL string) *common.RecipeData {
	set := selectorsFor(common.NormalizedHost(pageURL))

	return &common.RecipeData{
		Title:            firstMatch(doc, set.title),
		Description:      description(doc),
		Image:            image(doc),
		Ingredients:      allMatches(doc, set.ingredients, minIngredientChars),
		Instructions:     allMatches(doc, set.instructions, minInstructionChars),
		PrepTime:         firstMatch(doc, set.prepTime),
		CookTime:         firstMatch(doc, set.cookTime),
		TotalTime:        firstMatch(doc, set.totalTime),
		Servings:         firstMatch(doc, set.servings),
		ExtractionMethod: common.MethodHeuristic,
	}
}

func value(s *goquery.Selection, attr string) string {
	if attr != "" {
		v, _ := s.Attr(attr)
		return common.CollapseWhitespace(v)
	}
	return common.CollapseWhitespace(s.Text())
}

// firstMatch 第一個有內容的元素
func firstMatch(doc *goquery.Document, candidates []candidate) string {
	for _, c := range candidates {
		var found string
		doc.Find(c.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = value(s, c.attr)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// allMatches 第一個產生結果的選擇器，只保留長度大於 minChars 的文字
func allMatches(doc *goquery.Document, candidates []candidate, minChars int) []string {
	for _, c := range candidates {
		var out []string
		doc.Find(c.selector).Each(func(_ int, s *goquery.Selection) {
			if text := value(s, c.attr); utf8.RuneCountInString(text) > minChars {
				out = append(out, text)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

func description(doc *goquery.Document) string {
	if d := firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
		common.CollapseWhitespace(doc.Find(".recipe-description").First().Text()),
	); d != "" {
		return d
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := common.CollapseWhitespace(s.Text())
		if utf8.RuneCountInString(text) > minParagraphChars {
			para = common.Truncate(text, descriptionMaxChars, "...")
			return false
		}
		return true
	})
	return para
}

func image(doc *goquery.Document) string {
	src, _ := doc.Find(".recipe-image img").First().Attr("src")
	return firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		strings.TrimSpace(src),
	)
}
