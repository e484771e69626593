package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecoswap/internal/core/ai/governor"
	"ecoswap/internal/core/ai/provider"
	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
	"ecoswap/internal/pkg/metrics"
)

const (
	systemPrompt     = "You are a precise recipe extraction assistant. Return only valid JSON."
	emptyContentNote = "No HTML content available"
)

const promptTemplate = `You are a recipe extraction expert. Extract recipe information from the following webpage content.

URL: %s

Content:
%s
%s
Please extract and return ONLY a valid JSON object with this exact structure:
{
  "title": "Recipe title",
  "description": "Brief description",
  "ingredients": ["ingredient 1", "ingredient 2", "..."],
  "instructions": ["step 1", "step 2", "..."],
  "prepTime": "prep time if found",
  "cookTime": "cook time if found",
  "totalTime": "total time if found",
  "servings": "number of servings if found",
  "image": "image URL if found"
}

Rules:
- Extract ALL ingredients with quantities (e.g., "2 cups flour", "1 lb chicken breast")
- Extract ALL cooking steps in order
- If any field is not found, use an empty string or empty array
- Return ONLY the JSON object, no other text
- Ensure the JSON is valid and properly formatted
`

const missingContentHint = `
Note: The webpage content could not be loaded (possibly due to timeout or JavaScript requirements). Please provide your best guess for a recipe that might be found at this URL, or return an appropriate error response.
`

// GenerativeExtractor 以語言模型從頁面文字推斷食譜
type GenerativeExtractor struct {
	provider        provider.Provider
	governor        *governor.Governor
	maxContentChars int
	maxTokens       int
	temperature     float64
}

// NewGenerativeExtractor p 為 nil 代表未設定金鑰，Parse 一律回傳 ErrNoCredential
func NewGenerativeExtractor(p provider.Provider, g *governor.Governor, cfg config.AIConfig) *GenerativeExtractor {
	return &GenerativeExtractor{
		provider:        p,
		governor:        g,
		maxContentChars: cfg.MaxContentChars,
		maxTokens:       cfg.MaxTokens,
		temperature:     cfg.Temperature,
	}
}

type modelRecipe struct {
	Title        common.FlexString   `json:"title"`
	Description  common.FlexString   `json:"description"`
	Ingredients  []common.FlexString `json:"ingredients"`
	Instructions []common.FlexString `json:"instructions"`
	PrepTime     common.FlexString   `json:"prepTime"`
	CookTime     common.FlexString   `json:"cookTime"`
	TotalTime    common.FlexString   `json:"totalTime"`
	Servings     common.FlexString   `json:"servings"`
	Image        common.FlexString   `json:"image"`
}

// Parse 先向 governor 預留額度；模型輸出不合格時歸還額度且不計費
func (e *GenerativeExtractor) Parse(ctx context.Context, rawHTML, pageURL string) (*common.RecipeData, error) {
	if e == nil || e.provider == nil {
		return nil, ErrNoCredential
	}

	reservation, err := e.governor.Reserve()
	if err != nil {
		return nil, err
	}

	content := e.pageContent(rawHTML, pageURL)
	req := &provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(pageURL, content)},
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		JSONMode:    true,
	}

	if timeout := e.provider.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	model := e.provider.GetModel()
	start := time.Now()
	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		reservation.Release()
		if provider.IsRateLimit(err) {
			e.governor.MarkExhausted()
		}
		common.LogAICall(model, time.Since(start), common.UsageSnapshot{}, err)
		return nil, fmt.Errorf("generative extraction: %w", err)
	}

	recipe, err := parseModelOutput(resp.Content)
	if err != nil {
		reservation.Release()
		common.LogWarn("模型輸出不合格",
			zap.String("url", pageURL),
			zap.String("model", model),
			zap.Error(err),
		)
		return nil, err
	}

	usage := reservation.Commit(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	cost, _ := usage.CostThisCall.Float64()
	metrics.GenerativeCostUSD.Add(cost)
	metrics.GenerativeTokens.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.GenerativeTokens.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))
	common.LogAICall(model, time.Since(start), usage, nil)

	recipe.GenerativeUsage = &usage
	return recipe, nil
}

func (e *GenerativeExtractor) pageContent(rawHTML, pageURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return fmt.Sprintf("%s. URL: %s", emptyContentNote, pageURL)
	}
	text, err := MainText(rawHTML, e.maxContentChars)
	if err != nil || text == "" {
		return fmt.Sprintf("%s. URL: %s", emptyContentNote, pageURL)
	}
	return text
}

func buildPrompt(pageURL, content string) string {
	hint := ""
	if strings.Contains(content, emptyContentNote) {
		hint = missingContentHint
	}
	return fmt.Sprintf(promptTemplate, pageURL, content, hint)
}

// parseModelOutput 需要標題與至少一項食材
func parseModelOutput(raw string) (*common.RecipeData, error) {
	body, ok := common.ExtractJSONObject(common.StripCodeFences(raw))
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidModelOutput)
	}

	var m modelRecipe
	if err := common.ParseJSON(body, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}

	recipe := &common.RecipeData{
		Title:            m.Title.String(),
		Description:      m.Description.String(),
		Image:            m.Image.String(),
		Ingredients:      flexLines(m.Ingredients),
		Instructions:     flexLines(m.Instructions),
		PrepTime:         m.PrepTime.String(),
		CookTime:         m.CookTime.String(),
		TotalTime:        m.TotalTime.String(),
		Servings:         m.Servings.String(),
		ExtractionMethod: common.MethodGenerative,
	}
	if !recipe.Sufficient() {
		return nil, fmt.Errorf("%w: missing title or ingredients", ErrInvalidModelOutput)
	}
	return recipe, nil
}

func flexLines(values []common.FlexString) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return common.CompactLines(out)
}
