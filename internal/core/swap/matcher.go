package swap

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// MatchedIngredient 命中目錄的食材行
type MatchedIngredient struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	Quantity   string   `json:"quantity"`
	Unit       string   `json:"unit"`
	MatchedKey string   `json:"matchedKey"`
	Category   Category `json:"category"`
}

type keyForm struct {
	entry      int
	key        string
	stem       string
	vetoes     []string
	stemVetoes []string
}

// Matcher 以目錄比對食材行，先精確比對再以詞幹比對
type Matcher struct {
	catalog    *Catalog
	keys       []keyForm
	qualifiers []string
}

// NewMatcher 預先計算每個 key 的詞幹與排除詞
func NewMatcher(c *Catalog) *Matcher {
	// 植物性產品名稱：所有替代品加上額外列出的詞
	plant := make([]string, 0, len(c.plantBased)+len(c.entries)*3)
	plant = append(plant, c.plantBased...)
	for _, e := range c.entries {
		for _, alt := range e.Alternatives {
			if n := Normalize(alt); n != "" {
				plant = append(plant, n)
			}
		}
	}

	m := &Matcher{catalog: c, qualifiers: c.qualifiers}
	for i, e := range c.entries {
		kf := keyForm{entry: i, key: e.Key, stem: stemPhrase(e.Key)}
		for _, p := range plant {
			if containsWords(p, e.Key) {
				kf.vetoes = append(kf.vetoes, p)
				kf.stemVetoes = append(kf.stemVetoes, stemPhrase(p))
			}
		}
		m.keys = append(m.keys, kf)
	}
	return m
}

// Match 回傳命中的食材，未命中代表已是素食食材
func (m *Matcher) Match(line string) *MatchedIngredient {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	q := ParseQuantity(line)
	normalized := Normalize(q.Ingredient)
	if normalized == "" || m.hasQualifier(normalized) {
		return nil
	}

	for _, kf := range m.keys {
		if containsWords(normalized, kf.key) && !vetoed(normalized, kf.vetoes) {
			return m.result(line, normalized, q, kf)
		}
	}

	stemmed := stemPhrase(normalized)
	for _, kf := range m.keys {
		if containsWords(stemmed, kf.stem) && !vetoed(stemmed, kf.stemVetoes) {
			return m.result(line, normalized, q, kf)
		}
		if containsWords(normalized, kf.key) && !vetoed(normalized, kf.vetoes) {
			return m.result(line, normalized, q, kf)
		}
	}

	return nil
}

func (m *Matcher) result(line, normalized string, q Quantity, kf keyForm) *MatchedIngredient {
	entry := m.catalog.entries[kf.entry]
	return &MatchedIngredient{
		Original:   line,
		Normalized: normalized,
		Quantity:   q.Quantity,
		Unit:       q.Unit,
		MatchedKey: entry.Key,
		Category:   entry.Category,
	}
}

// IsPlantBased 該行是否明確標示為植物性產品
func (m *Matcher) IsPlantBased(line string) bool {
	normalized := Normalize(ParseQuantity(line).Ingredient)
	if m.hasQualifier(normalized) {
		return true
	}
	for _, kf := range m.keys {
		if containsWords(normalized, kf.key) && vetoed(normalized, kf.vetoes) {
			return true
		}
	}
	return false
}

func (m *Matcher) hasQualifier(normalized string) bool {
	for _, q := range m.qualifiers {
		if containsWords(normalized, q) {
			return true
		}
	}
	return false
}

func vetoed(phrase string, vetoes []string) bool {
	for _, v := range vetoes {
		if containsWords(phrase, v) {
			return true
		}
	}
	return false
}

// containsWords 以完整單字比對子字串
func containsWords(phrase, words string) bool {
	if words == "" {
		return false
	}
	return strings.Contains(" "+phrase+" ", " "+words+" ")
}

func stemPhrase(phrase string) string {
	fields := strings.Fields(phrase)
	for i, f := range fields {
		fields[i] = english.Stem(f, false)
	}
	return strings.Join(fields, " ")
}
