package recipe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recipeService "ecoswap/internal/core/recipe"
	"ecoswap/internal/core/scrape"
	"ecoswap/internal/core/swap"
	"ecoswap/internal/pkg/common"
)

type stubExtractor struct {
	recipe *common.RecipeData
	err    error
}

func (s stubExtractor) Extract(context.Context, string) (*common.RecipeData, error) {
	return s.recipe, s.err
}

type analysisBody struct {
	Success bool `json:"success"`
	Data    struct {
		ID       string `json:"id"`
		Analysis struct {
			SustainabilityScore int `json:"sustainabilityScore"`
			NonVeganCount       int `json:"nonVeganCount"`
		} `json:"analysis"`
		EcoSwappedRecipe struct {
			Title        string   `json:"title"`
			Instructions []string `json:"instructions"`
		} `json:"ecoSwappedRecipe"`
	} `json:"data"`
}

func newTestRouter(ext recipeService.Extractor, debug bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := recipeService.NewService(ext, swap.NewAnalyzer(swap.MustDefaultCatalog()), recipeService.Options{
		Provider: "openai",
		Model:    "gpt-4o-mini",
	})
	h := NewHandler(svc, debug)

	r := gin.New()
	r.POST("/recipes/analyze", h.HandleAnalyzeURL)
	r.GET("/recipes/validate-url", h.HandleValidateURL)
	r.GET("/recipes/supported-sites", h.HandleSupportedSites)
	r.POST("/ingredients/analyze", h.HandleAnalyzeIngredients)
	r.GET("/usage", h.HandleUsage)
	r.GET("/catalog", h.HandleCatalog)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func chili() *common.RecipeData {
	return &common.RecipeData{
		Title:            "Chili",
		Ingredients:      []string{"2 cups oat milk", "1 lb beef", "1 cup rice"},
		Instructions:     []string{"Brown the beef in oil."},
		ExtractionMethod: common.MethodStructured,
	}
}

func TestHandleAnalyzeURL(t *testing.T) {
	r := newTestRouter(stubExtractor{recipe: chili()}, false)

	w := do(r, http.MethodPost, "/recipes/analyze", `{"url":"https://example.org/chili"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body analysisBody
	require.NoError(t, common.ParseJSON(w.Body.String(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data.ID)
	assert.Equal(t, 55, body.Data.Analysis.SustainabilityScore)
	assert.Equal(t, "Vegan Chili", body.Data.EcoSwappedRecipe.Title)
	assert.Equal(t, []string{"Brown the mushrooms in oil."}, body.Data.EcoSwappedRecipe.Instructions)
}

func TestHandleAnalyzeURLErrors(t *testing.T) {
	failed := &common.RecipeData{
		Ingredients:      []string{},
		Instructions:     []string{},
		ExtractionMethod: common.MethodFailed,
	}
	exhausted := fmt.Errorf("%w: %w", scrape.ErrExhausted, scrape.ErrNoCredential)

	tests := []struct {
		name       string
		ext        stubExtractor
		debug      bool
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing url", stubExtractor{recipe: chili()}, false, `{}`, http.StatusBadRequest, common.ErrCodeInvalidURL},
		{"malformed json", stubExtractor{recipe: chili()}, false, `{"url":`, http.StatusBadRequest, common.ErrCodeInvalidURL},
		{"bad scheme", stubExtractor{recipe: chili()}, false, `{"url":"ftp://example.org/x"}`, http.StatusBadRequest, common.ErrCodeInvalidURL},
		{"extraction failed", stubExtractor{recipe: failed, err: exhausted}, false, `{"url":"https://example.org/x"}`, http.StatusUnprocessableEntity, common.ErrCodeExtraction},
		{"extraction failed debug", stubExtractor{recipe: failed, err: exhausted}, true, `{"url":"https://example.org/x"}`, http.StatusUnprocessableEntity, common.ErrCodeExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestRouter(tt.ext, tt.debug), http.MethodPost, "/recipes/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp common.ErrorResponse
			require.NoError(t, common.ParseJSON(w.Body.String(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
			if tt.debug {
				assert.Contains(t, resp.Details, "no completion service credential")
			} else {
				assert.Empty(t, resp.Details)
			}
		})
	}
}

func TestHandleAnalyzeIngredients(t *testing.T) {
	r := newTestRouter(stubExtractor{}, false)

	w := do(r, http.MethodPost, "/ingredients/analyze", `{"ingredients":["2 eggs","1 cup flour"],"title":"Pancakes"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body analysisBody
	require.NoError(t, common.ParseJSON(w.Body.String(), &body))
	assert.Equal(t, 1, body.Data.Analysis.NonVeganCount)
	assert.Equal(t, "Vegan Pancakes", body.Data.EcoSwappedRecipe.Title)

	w = do(r, http.MethodPost, "/ingredients/analyze", `{"ingredients":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/ingredients/analyze", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)
}

func TestHandleValidateURL(t *testing.T) {
	r := newTestRouter(stubExtractor{}, false)

	var body struct {
		Data recipeService.URLValidation `json:"data"`
	}

	w := do(r, http.MethodGet, "/recipes/validate-url?url=https://www.food.com/recipe/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, common.ParseJSON(w.Body.String(), &body))
	assert.True(t, body.Data.Valid)

	w = do(r, http.MethodGet, "/recipes/validate-url?url=mailto:chef@example.org", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, common.ParseJSON(w.Body.String(), &body))
	assert.False(t, body.Data.Valid)
	assert.NotEmpty(t, body.Data.Message)
}

func TestHandleInfoEndpoints(t *testing.T) {
	r := newTestRouter(stubExtractor{}, false)

	w := do(r, http.MethodGet, "/recipes/supported-sites", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "allrecipes.com")

	w = do(r, http.MethodGet, "/usage", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasCredential":false`)
	assert.Contains(t, w.Body.String(), `"model":"gpt-4o-mini"`)

	w = do(r, http.MethodGet, "/catalog", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"beef"`)
}
