package swap

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"

	"ecoswap/internal/pkg/common"
)

const veganTitlePrefix = "Vegan "

// SwappedIngredient 改寫後的食材行
type SwappedIngredient struct {
	Original  string `json:"original"`
	Swapped   string `json:"swapped"`
	IsSwapped bool   `json:"isSwapped"`
	Notes     string `json:"notes,omitempty"`
}

// SwapSummary 單筆替換摘要
type SwapSummary struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Notes string `json:"notes"`
}

// EcoSwappedRecipe 套用替換後的食譜
type EcoSwappedRecipe struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Servings     string              `json:"servings"`
	PrepTime     string              `json:"prepTime"`
	CookTime     string              `json:"cookTime"`
	TotalTime    string              `json:"totalTime"`
	Ingredients  []SwappedIngredient `json:"ingredients"`
	Instructions []string            `json:"instructions"`
	SwapCount    int                 `json:"swapCount"`
	SwapSummary  []SwapSummary       `json:"swapSummary"`
}

// Rewrite 將替換建議套用到食材與步驟；任一輸入為 nil 時回傳 nil。
// 步驟依建議順序逐一替換，後面的替換會看到前面替換後的文字。
func Rewrite(recipe *common.RecipeData, suggestions []Suggestion) *EcoSwappedRecipe {
	if recipe == nil || suggestions == nil {
		return nil
	}

	patterns := make([]*regexp.Regexp, len(suggestions))
	for i, s := range suggestions {
		patterns[i] = wordPattern(s.MatchedKey)
	}

	out := &EcoSwappedRecipe{
		Title:        recipe.Title,
		Description:  recipe.Description,
		Servings:     recipe.Servings,
		PrepTime:     recipe.PrepTime,
		CookTime:     recipe.CookTime,
		TotalTime:    recipe.TotalTime,
		Ingredients:  make([]SwappedIngredient, 0, len(recipe.Ingredients)),
		Instructions: make([]string, 0, len(recipe.Instructions)),
		SwapSummary:  make([]SwapSummary, 0, len(suggestions)),
	}
	if out.Title != "" {
		out.Title = veganTitlePrefix + out.Title
	}

	for _, line := range recipe.Ingredients {
		item := SwappedIngredient{Original: line, Swapped: line}
		if i := findSuggestion(line, suggestions, patterns); i >= 0 {
			s := suggestions[i]
			if patterns[i] != nil && patterns[i].MatchString(line) {
				item.Swapped = patterns[i].ReplaceAllLiteralString(line, s.Recommended)
			} else {
				// 以詞幹命中：替換詞幹相同的字，找不到則保留原文
				item.Swapped = replaceStemmed(line, s.MatchedKey, s.Recommended)
			}
			item.IsSwapped = true
			item.Notes = s.Notes
			out.SwapCount++
		}
		out.Ingredients = append(out.Ingredients, item)
	}

	// 同一個 key 只套用一次
	unique := make([]int, 0, len(suggestions))
	seen := make(map[string]bool, len(suggestions))
	for i, s := range suggestions {
		if seen[s.MatchedKey] {
			continue
		}
		seen[s.MatchedKey] = true
		unique = append(unique, i)
	}

	for _, step := range recipe.Instructions {
		for _, i := range unique {
			if patterns[i] != nil {
				step = patterns[i].ReplaceAllLiteralString(step, suggestions[i].Recommended)
			}
		}
		out.Instructions = append(out.Instructions, step)
	}

	for _, i := range unique {
		s := suggestions[i]
		out.SwapSummary = append(out.SwapSummary, SwapSummary{
			From:  s.MatchedKey,
			To:    s.Recommended,
			Notes: s.Notes,
		})
	}

	return out
}

var letterRun = regexp.MustCompile(`\p{L}+`)

// replaceStemmed 將詞幹與 key 相同的連續單字換成 replacement，其餘文字不變
func replaceStemmed(line, key, replacement string) string {
	target := strings.Fields(stemPhrase(Normalize(key)))
	if len(target) == 0 {
		return line
	}

	locs := letterRun.FindAllStringIndex(line, -1)
	stems := make([]string, len(locs))
	for i, loc := range locs {
		stems[i] = english.Stem(Normalize(line[loc[0]:loc[1]]), false)
	}

	var b strings.Builder
	last := 0
	for i := 0; i+len(target) <= len(locs); {
		if !equalWords(stems[i:i+len(target)], target) {
			i++
			continue
		}
		b.WriteString(line[last:locs[i][0]])
		b.WriteString(replacement)
		last = locs[i+len(target)-1][1]
		i += len(target)
	}
	if last == 0 {
		return line
	}
	b.WriteString(line[last:])
	return b.String()
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func wordPattern(word string) *regexp.Regexp {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

// findSuggestion 找出第一個 key 以完整單字出現在該行，或原文與該行相同的建議
func findSuggestion(line string, suggestions []Suggestion, patterns []*regexp.Regexp) int {
	lower := strings.ToLower(strings.TrimSpace(line))
	for i, s := range suggestions {
		if strings.ToLower(strings.TrimSpace(s.Original)) == lower {
			return i
		}
	}
	for i := range suggestions {
		if patterns[i] != nil && patterns[i].MatchString(line) {
			return i
		}
	}
	return -1
}
