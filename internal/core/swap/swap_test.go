package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoswap/internal/pkg/common"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return NewAnalyzer(c)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "creme fraiche", Normalize("Crème Fraîche!"))
	assert.Equal(t, "2 cups whole milk", Normalize("  2 cups,  whole   MILK "))
	assert.Equal(t, "freerange eggs", Normalize("free-range eggs"))
	assert.Equal(t, "", Normalize(" ... "))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{"2 cups whole milk", Quantity{"2", "cups", "whole milk"}},
		{"1 1/2 cups flour", Quantity{"1 1/2", "cups", "flour"}},
		{"½ tsp salt", Quantity{"½", "tsp", "salt"}},
		{"2-3 cloves garlic", Quantity{"2-3", "cloves", "garlic"}},
		{"0.5 kg beef", Quantity{"0.5", "kg", "beef"}},
		{"3 eggs", Quantity{"3", "", "eggs"}},
		{"2 garlic bulbs", Quantity{"2", "", "garlic bulbs"}},
		{"Salt to taste", Quantity{"", "", "salt to taste"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuantity(tt.in))
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("default catalog", func(t *testing.T) {
		c, err := DefaultCatalog()
		require.NoError(t, err)
		assert.Greater(t, c.Len(), 20)

		e, ok := c.Lookup("Sour Cream")
		require.True(t, ok)
		assert.Equal(t, "sour cream", e.Key)
		assert.Equal(t, CategoryDairy, e.Category)
		assert.Equal(t, "cashew sour cream", e.DefaultAlternative)

		_, ok = c.Lookup("tofu")
		assert.False(t, ok)
	})

	t.Run("plural before singular", func(t *testing.T) {
		keys := make(map[string]int)
		for i, e := range MustDefaultCatalog().Entries() {
			keys[e.Key] = i
		}
		assert.Less(t, keys["eggs"], keys["egg"])
		assert.Less(t, keys["sour cream"], keys["cream"])
		assert.Less(t, keys["cream cheese"], keys["cheese"])
		assert.Less(t, keys["buttermilk"], keys["milk"])
	})

	t.Run("default alternative falls back to first", func(t *testing.T) {
		c, err := LoadCatalog([]byte(`
entries:
  - key: Milk
    category: dairy
    alternatives: [oat milk, soy milk]
`))
		require.NoError(t, err)
		e, ok := c.Lookup("milk")
		require.True(t, ok)
		assert.Equal(t, "oat milk", e.DefaultAlternative)
	})

	errorCases := map[string]string{
		"empty":            `entries: []`,
		"duplicate":        "entries:\n  - {key: milk, category: dairy, alternatives: [a]}\n  - {key: MILK, category: dairy, alternatives: [b]}\n",
		"no alternatives":  "entries:\n  - {key: milk, category: dairy, alternatives: []}\n",
		"unknown category": "entries:\n  - {key: milk, category: drinks, alternatives: [a]}\n",
		"not yaml":         "entries: [",
	}
	for name, doc := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestMatcherMatch(t *testing.T) {
	m := NewMatcher(MustDefaultCatalog())

	tests := []struct {
		line     string
		key      string
		quantity string
		unit     string
	}{
		{"2 cups whole milk", "milk", "2", "cups"},
		{"3 free-range eggs", "eggs", "3", ""},
		{"1 large egg, beaten", "egg", "1", ""},
		{"1 cup sour cream", "sour cream", "1", "cup"},
		{"8 oz cream cheese, softened", "cream cheese", "8", "oz"},
		{"1 cup buttermilk", "buttermilk", "1", "cup"},
		{"2 tbsp butter and milk", "milk", "2", "tbsp"},
		{"1 lb beef and mushrooms", "beef", "1", "lb"},
		{"2 cups shredded cheeses", "cheese", "2", "cups"},
		{"4 anchovies", "anchovy", "4", ""},
		{"2 tbsp Honey", "honey", "2", "tbsp"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := m.Match(tt.line)
			require.NotNil(t, got)
			assert.Equal(t, tt.key, got.MatchedKey)
			assert.Equal(t, tt.quantity, got.Quantity)
			assert.Equal(t, tt.unit, got.Unit)
			assert.Equal(t, tt.line, got.Original)
		})
	}

	vegan := []string{
		"",
		"1 cup rice",
		"2 cups oat milk",
		"2 tbsp peanut butter",
		"1 eggplant, diced",
		"1 cup vegan cheese",
		"2 tbsp plant-based butter",
		"3 flax eggs",
		"1 cup vegetable broth",
		"1 can coconut milk",
	}
	for _, line := range vegan {
		t.Run("vegan "+line, func(t *testing.T) {
			assert.Nil(t, m.Match(line))
		})
	}
}

func TestMatcherIsPlantBased(t *testing.T) {
	m := NewMatcher(MustDefaultCatalog())

	assert.True(t, m.IsPlantBased("2 tbsp peanut butter"))
	assert.True(t, m.IsPlantBased("1 cup dairy-free yogurt"))
	assert.False(t, m.IsPlantBased("1 cup rice"))
	assert.False(t, m.IsPlantBased("1 cup milk"))
}

func TestEstimatorScore(t *testing.T) {
	e := NewEstimator()

	t.Run("empty list", func(t *testing.T) {
		r := e.Score(0, nil)
		assert.Equal(t, Report{}, r)
	})

	t.Run("all vegan", func(t *testing.T) {
		r := e.Score(4, nil)
		assert.Equal(t, 60, r.SustainabilityScore)
		assert.Equal(t, 4, r.VeganCount)
	})

	t.Run("clamped", func(t *testing.T) {
		matches := make([]MatchedIngredient, 10)
		for i := range matches {
			matches[i] = MatchedIngredient{MatchedKey: "beef", Category: CategoryMeat}
		}
		r := e.Score(10, matches)
		assert.Equal(t, 100, r.SustainabilityScore)
		assert.Equal(t, 0, r.VeganCount)
	})

	t.Run("bonus tiers", func(t *testing.T) {
		assert.Equal(t, 15.0, e.Bonus(MatchedIngredient{MatchedKey: "lamb", Category: CategoryMeat}))
		assert.Equal(t, 10.0, e.Bonus(MatchedIngredient{MatchedKey: "salmon", Category: CategorySeafood}))
		assert.Equal(t, 10.0, e.Bonus(MatchedIngredient{MatchedKey: "butter", Category: CategoryDairy}))
		assert.Equal(t, 5.0, e.Bonus(MatchedIngredient{MatchedKey: "honey", Category: CategoryOther}))
		assert.Equal(t, 5.0, e.Bonus(MatchedIngredient{MatchedKey: "bacon", Category: CategoryMeat}))
		assert.Equal(t, 5.0, e.Bonus(MatchedIngredient{MatchedKey: "turkey", Category: CategoryMeat}))
		assert.Equal(t, 5.0, e.Bonus(MatchedIngredient{MatchedKey: "shrimp", Category: CategorySeafood}))
	})
}

func TestAnalyzeLowTierMeats(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, line := range []string{"1 lb bacon", "1 lb turkey", "1 lb shrimp"} {
		t.Run(line, func(t *testing.T) {
			got := a.Analyze([]string{line, "1 cup rice"})
			assert.Equal(t, 1, got.NonVeganCount)
			assert.Equal(t, 35, got.SustainabilityScore)
		})
	}
}

func TestEstimatorSavingsDefault(t *testing.T) {
	e := NewEstimator()

	carbon, water := e.Savings("beef")
	assert.Equal(t, 6.0, carbon)
	assert.Equal(t, 1500.0, water)

	carbon, water = e.Savings("gelatin")
	assert.Greater(t, carbon, 0.0)
	assert.Greater(t, water, 0.0)
}

func TestAnalyzeScenario(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.Analyze([]string{"2 cups oat milk", "1 lb beef", "1 cup rice"})

	assert.Equal(t, 3, got.TotalIngredients)
	assert.Equal(t, 2, got.VeganCount)
	assert.Equal(t, 1, got.NonVeganCount)
	assert.Equal(t, 55, got.SustainabilityScore)
	assert.False(t, got.IsVeganFriendly)

	require.Len(t, got.Suggestions, 1)
	s := got.Suggestions[0]
	assert.Equal(t, "beef", s.MatchedKey)
	assert.Equal(t, "mushrooms", s.Recommended)
	assert.Equal(t, "1", s.Quantity)
	assert.Equal(t, "lb", s.Unit)
	assert.Equal(t, 6.0, s.CarbonSavings)
	assert.Equal(t, []string{"beef"}, got.Details.MatchedKeys)
	assert.Equal(t, []string{"2 cups oat milk"}, got.Details.PlantBasedLines)
}

func TestAnalyzeCountsInvariant(t *testing.T) {
	a := newTestAnalyzer(t)

	lists := [][]string{
		nil,
		{"  ", ""},
		{"1 cup rice", "2 carrots"},
		{"1 lb beef", "2 eggs", "1 cup milk", "1 tbsp honey", "4 oz bacon", "1 salmon fillet"},
		{"2 cups shredded cheeses", "1 eggplant", "1 cup chicken broth", "salt"},
	}

	for _, ingredients := range lists {
		got := a.Analyze(ingredients)
		assert.Equal(t, got.TotalIngredients, got.VeganCount+got.NonVeganCount)
		assert.GreaterOrEqual(t, got.SustainabilityScore, 0)
		assert.LessOrEqual(t, got.SustainabilityScore, 100)
		assert.Len(t, got.Suggestions, got.NonVeganCount)
		assert.NotNil(t, got.Suggestions)
	}
}

func TestImpact(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.Analyze([]string{"1 lb beef", "1 cup milk"})
	impact := a.Impact(got.Suggestions)

	assert.InDelta(t, 6.6, impact.CarbonFootprintReduction, 1e-9)
	assert.InDelta(t, 1750, impact.WaterUsageReduction, 1e-9)
	assert.InDelta(t, 13.2, impact.LandUseReduction, 1e-9)

	assert.Equal(t, EnvironmentalImpact{}, a.Impact(nil))
}

func TestRewriteNilInputs(t *testing.T) {
	assert.Nil(t, Rewrite(nil, []Suggestion{}))
	assert.Nil(t, Rewrite(&common.RecipeData{}, nil))
}

func TestRewriteWithoutSuggestions(t *testing.T) {
	recipe := &common.RecipeData{
		Title:        "Beef Stew",
		Servings:     "4",
		Ingredients:  []string{"1 lb beef", "2 carrots"},
		Instructions: []string{"Brown the beef in oil"},
	}

	got := Rewrite(recipe, []Suggestion{})
	require.NotNil(t, got)

	assert.Equal(t, "Vegan Beef Stew", got.Title)
	assert.Equal(t, 0, got.SwapCount)
	assert.Equal(t, recipe.Instructions, got.Instructions)
	for i, item := range got.Ingredients {
		assert.False(t, item.IsSwapped)
		assert.Equal(t, recipe.Ingredients[i], item.Swapped)
	}
	assert.Empty(t, got.SwapSummary)
}

func TestRewriteBeef(t *testing.T) {
	recipe := &common.RecipeData{
		Ingredients:  []string{"1 lb ground beef", "1 onion", "1 eggplant"},
		Instructions: []string{"Brown the beef in oil", "Stir the BEEF often", "Add beefsteak tomatoes"},
	}
	suggestions := []Suggestion{{
		Original:    "1 lb ground beef",
		MatchedKey:  "beef",
		Recommended: "mushrooms",
		Notes:       "Mushrooms for umami",
	}}

	got := Rewrite(recipe, suggestions)
	require.NotNil(t, got)

	assert.Equal(t, "", got.Title)
	assert.Equal(t, SwappedIngredient{
		Original:  "1 lb ground beef",
		Swapped:   "1 lb ground mushrooms",
		IsSwapped: true,
		Notes:     "Mushrooms for umami",
	}, got.Ingredients[0])
	assert.False(t, got.Ingredients[1].IsSwapped)
	assert.False(t, got.Ingredients[2].IsSwapped)
	assert.Equal(t, 1, got.SwapCount)

	assert.Equal(t, []string{
		"Brown the mushrooms in oil",
		"Stir the mushrooms often",
		"Add beefsteak tomatoes",
	}, got.Instructions)
	assert.Equal(t, []SwapSummary{{From: "beef", To: "mushrooms", Notes: "Mushrooms for umami"}}, got.SwapSummary)
}

func TestRewriteInstructionOrder(t *testing.T) {
	recipe := &common.RecipeData{Instructions: []string{"Pour in the chicken broth"}}
	broth := Suggestion{MatchedKey: "chicken broth", Recommended: "vegetable broth"}
	stock := Suggestion{MatchedKey: "broth", Recommended: "stock"}

	forward := Rewrite(recipe, []Suggestion{broth, stock})
	reverse := Rewrite(recipe, []Suggestion{stock, broth})

	assert.Equal(t, "Pour in the vegetable stock", forward.Instructions[0])
	assert.Equal(t, "Pour in the chicken stock", reverse.Instructions[0])
}

func TestRewriteStemmedLine(t *testing.T) {
	a := newTestAnalyzer(t)
	recipe := &common.RecipeData{
		Title:       "Mac",
		Ingredients: []string{"2 cups shredded cheeses", "2 cups milk", "1 cup grated Cheeses, divided"},
	}

	analysis := a.Analyze(recipe.Ingredients)
	got := a.Rewrite(recipe, analysis.Suggestions)
	require.NotNil(t, got)

	assert.Equal(t, "2 cups shredded vegan cheese", got.Ingredients[0].Swapped)
	assert.True(t, got.Ingredients[0].IsSwapped)
	assert.Equal(t, "2 cups oat milk", got.Ingredients[1].Swapped)
	assert.Equal(t, "1 cup grated vegan cheese, divided", got.Ingredients[2].Swapped)
	assert.Equal(t, 3, got.SwapCount)
	assert.Len(t, got.SwapSummary, 2)
}

func TestReplaceStemmed(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  string
		want string
	}{
		{"plural with trailing note", "2 cups shredded cheeses, divided", "cheese", "2 cups shredded vegan cheese, divided"},
		{"multi word key", "1 cup Sour Creams (optional)", "sour cream", "1 cup vegan cheese (optional)"},
		{"every occurrence", "cheeses and more cheeses", "cheese", "vegan cheese and more vegan cheese"},
		{"no token left unchanged", "2 cups something else", "cheese", "2 cups something else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replaceStemmed(tt.line, tt.key, "vegan cheese"))
		})
	}
}

func TestRewriteKeepsTextWhenStemTokenMissing(t *testing.T) {
	recipe := &common.RecipeData{Ingredients: []string{"3 Tbsp whatever-it-is, to taste"}}
	suggestions := []Suggestion{{
		Original:    "3 Tbsp whatever-it-is, to taste",
		MatchedKey:  "cheese",
		Recommended: "vegan cheese",
	}}

	got := Rewrite(recipe, suggestions)
	require.NotNil(t, got)
	assert.Equal(t, "3 Tbsp whatever-it-is, to taste", got.Ingredients[0].Swapped)
	assert.True(t, got.Ingredients[0].IsSwapped)
}
