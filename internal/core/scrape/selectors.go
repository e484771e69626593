package scrape

// candidate 單一選擇器；attr 非空時優先讀取該屬性
type candidate struct {
	selector string
	attr     string
}

// selectorSet 每個欄位依序嘗試的選擇器
type selectorSet struct {
	title        []candidate
	ingredients  []candidate
	instructions []candidate
	prepTime     []candidate
	cookTime     []candidate
	totalTime    []candidate
	servings     []candidate
}

func sel(selectors ...string) []candidate {
	out := make([]candidate, len(selectors))
	for i, s := range selectors {
		out[i] = candidate{selector: s}
	}
	return out
}

func timeSel(itemprop string, selectors ...string) []candidate {
	out := []candidate{
		{selector: `[itemprop="` + itemprop + `"]`, attr: "datetime"},
		{selector: `[itemprop="` + itemprop + `"]`, attr: "content"},
		{selector: `[itemprop="` + itemprop + `"]`},
	}
	return append(out, sel(selectors...)...)
}

// siteSelectors 以正規化主機名稱為 key
var siteSelectors = map[string]selectorSet{
	"allrecipes.com": {
		title: sel(
			"h1.entry-title",
			"h1.recipe-summary__h1",
			`h1[data-module="RecipeHeaderTitle"]`,
			".recipe-header h1",
			".recipe-title",
		),
		ingredients: sel(
			".mntl-structured-ingredients__list-item",
			`span[data-ingredient-name="true"]`,
			"[data-ingredient-name]",
			".recipe-ingred_txt",
			".ingredients-item-name",
			".recipe-summary__item",
			"[data-ingredient] span",
		),
		instructions: sel(
			".mntl-sc-block-group--LI .mntl-sc-block-html",
			".recipe-instructions__list-item p",
			".instructions-section-item p",
			".recipe-instruction-text",
			".instructions-section p",
			".recipe-instructions p",
		),
	},
	"food.com": {
		title:        sel("h1.recipe-title"),
		ingredients:  sel(".recipe-ingredients li"),
		instructions: sel(".recipe-directions li"),
	},
	"foodnetwork.com": {
		title:        sel("h1.o-AssetTitle__a-HeadlineText"),
		ingredients:  sel(".o-RecipeIngredients__a-Ingredient"),
		instructions: sel(".o-Method__m-Step"),
	},
	"epicurious.com": {
		title:        sel(`h1[data-testid="recipe-header-title"]`),
		ingredients:  sel(`[data-testid="ingredient"] p`),
		instructions: sel(`[data-testid="instruction"] p`),
	},
	"simplyrecipes.com": {
		title:        sel("h1.entry-title"),
		ingredients:  sel(".structured-ingredients__list-item"),
		instructions: sel(".structured-project__steps li"),
	},
	"tasteofhome.com": {
		title:        sel("h1.recipe-title"),
		ingredients:  sel(".recipe-ingredients__item"),
		instructions: sel(".recipe-directions__item p"),
	},
	"delish.com": {
		title:        sel("h1.recipe-hed"),
		ingredients:  sel(".ingredient-item"),
		instructions: sel(".direction-lists li"),
	},
	"eatingwell.com": {
		title:        sel("h1.recipe-title"),
		ingredients:  sel(".recipe-ingredients li"),
		instructions: sel(".recipe-instructions li"),
	},
}

var genericSelectors = selectorSet{
	title: sel(
		`h1[class*="recipe-title"]`,
		`h1[class*="entry-title"]`,
		`h1[class*="post-title"]`,
		".recipe-summary__h1",
		".entry-title-primary",
		".recipe-header h1",
		".recipe-title",
		".post-title",
		".entry-title",
		"h1.title",
		"h1",
		`[data-test-id="recipe-title"]`,
		`[itemprop="name"]`,
	),
	ingredients: sel(
		`[itemprop="recipeIngredient"]`,
		".recipe-card-ingredient",
		".recipe-ingredient",
		".ingredients li",
		".ingredient-list li",
		".recipe-ingredients li",
		".ingredients-section li",
		".recipe-card-ingredients li",
		".ingredient",
		".structured-ingredients__list-item",
		".recipe-summary__item",
		`[data-test-id="ingredients-prep"] li`,
		".ingredients-list li",
		".recipe-card-ingredient-list li",
	),
	instructions: sel(
		`[itemprop="recipeInstructions"] li`,
		`[itemprop="recipeInstructions"]`,
		".recipe-instruction",
		".instructions li",
		".recipe-instructions li",
		".directions li",
		".recipe-directions li",
		".instructions-section li",
		".recipe-card-instructions li",
		".direction",
		".instruction",
		".recipe-instruction-text",
		".mntl-sc-block-group--LI .mntl-sc-block-callout",
		".instructions-section .paragraph",
		`[data-test-id="instructions-prep"] li`,
		".instructions-list li",
		".recipe-card-instruction-list li",
	),
	prepTime: timeSel("prepTime",
		".recipe-prep-time",
		".prep-time",
		".recipe-summary__prep-time",
		".recipe-time .prep",
		".recipe-meta .prep-time",
		`[data-test-id="prep-time"]`,
		".recipe-details .prep-time",
	),
	cookTime: timeSel("cookTime",
		".recipe-cook-time",
		".cook-time",
		".recipe-summary__cook-time",
		".recipe-time .cook",
		".recipe-meta .cook-time",
		`[data-test-id="cook-time"]`,
		".recipe-details .cook-time",
	),
	totalTime: timeSel("totalTime",
		".recipe-total-time",
		".total-time",
		".recipe-meta .total-time",
	),
	servings: append(sel(
		`[itemprop="recipeYield"]`,
		`[itemprop="yield"]`,
	), sel(
		".recipe-servings",
		".servings",
		".recipe-summary__servings",
		".recipe-yield",
		".yield",
		".recipe-meta .servings",
		`[data-test-id="servings"]`,
		".recipe-details .servings",
	)...),
}

// selectorsFor 站點專屬的選擇器在前，通用選擇器在後
func selectorsFor(host string) selectorSet {
	site := siteSelectors[host]
	return selectorSet{
		title:        concat(site.title, genericSelectors.title),
		ingredients:  concat(site.ingredients, genericSelectors.ingredients),
		instructions: concat(site.instructions, genericSelectors.instructions),
		prepTime:     concat(site.prepTime, genericSelectors.prepTime),
		cookTime:     concat(site.cookTime, genericSelectors.cookTime),
		totalTime:    concat(site.totalTime, genericSelectors.totalTime),
		servings:     concat(site.servings, genericSelectors.servings),
	}
}

func concat(a, b []candidate) []candidate {
	out := make([]candidate, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// SupportedSites 有專屬選擇器的網站
func SupportedSites() []string {
	return []string{
		"allrecipes.com",
		"food.com",
		"foodnetwork.com",
		"epicurious.com",
		"simplyrecipes.com",
		"tasteofhome.com",
		"delish.com",
		"eatingwell.com",
	}
}
