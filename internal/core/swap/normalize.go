package swap

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)

	quantityToken = `(?:\d+\s+\d+/\d+|\d+/\d+|\d+[½⅓⅔¼¾⅛]|\d*\.\d+|\d+|[½⅓⅔¼¾⅛])`

	unitWords = []string{
		"tablespoons", "tablespoon", "teaspoons", "teaspoon", "tbsp", "tbs", "tsp",
		"cups", "cup", "pounds", "pound", "lbs", "lb", "ounces", "ounce", "oz",
		"kilograms", "kilogram", "kg", "grams", "gram", "g",
		"milliliters", "milliliter", "ml", "liters", "liter", "l",
		"pinches", "pinch", "dashes", "dash", "cloves", "clove", "cans", "can",
		"sticks", "stick", "slices", "slice", "packages", "package",
		"pints", "pint", "quarts", "quart", "handfuls", "handful", "bunches", "bunch",
		"sprigs", "sprig", "pieces", "piece",
	}

	quantityPattern = regexp.MustCompile(`^(` + quantityToken + `(?:\s*(?:-|to)\s*` + quantityToken + `)?)\s*` +
		`(?:(` + strings.Join(unitWords, "|") + `)\b\.?)?\s*(.*)$`)
)

// Quantity 拆出的數量、單位與食材描述
type Quantity struct {
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Ingredient string `json:"ingredient"`
}

// foldAccents 去除變音符號（crème → creme）
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize 小寫、移除標點並合併空白
func Normalize(text string) string {
	text = strings.ToLower(foldAccents(text))
	text = nonWordPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// ParseQuantity 拆出開頭的數量與單位，沒有數量時整段視為食材描述
func ParseQuantity(text string) Quantity {
	text = strings.TrimSpace(strings.ToLower(text))
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return Quantity{Ingredient: text}
	}
	return Quantity{
		Quantity:   strings.Join(strings.Fields(m[1]), " "),
		Unit:       m[2],
		Ingredient: strings.TrimSpace(m[3]),
	}
}
