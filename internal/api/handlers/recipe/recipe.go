package recipe

import (
	"github.com/gin-gonic/gin"

	recipeService "ecoswap/internal/core/recipe"
	"ecoswap/internal/pkg/common"
)

// AnalyzeURLRequest 以網址分析食譜
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// Handler 食譜相關 API
type Handler struct {
	service *recipeService.Service
	debug   bool
}

// NewHandler 創建新的處理器，debug 時錯誤回應附上細節
func NewHandler(service *recipeService.Service, debug bool) *Handler {
	return &Handler{
		service: service,
		debug:   debug,
	}
}

// HandleAnalyzeURL 擷取並分析網址上的食譜
func (h *Handler) HandleAnalyzeURL(c *gin.Context) {
	var req AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "請求格式無效", common.ErrInvalidURL.WithMessage("Recipe URL is required").Wrap(err))
		return
	}

	result, err := h.service.AnalyzeURL(c.Request.Context(), req.URL)
	if err != nil {
		h.fail(c, "食譜分析失敗", err)
		return
	}

	h.ok(c, result)
}

// HandleAnalyzeIngredients 分析直接提供的食材
func (h *Handler) HandleAnalyzeIngredients(c *gin.Context) {
	var req recipeService.IngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "請求格式無效", common.ErrInvalidRequest.WithMessage("Ingredients array is required").Wrap(err))
		return
	}

	result, err := h.service.AnalyzeIngredients(req)
	if err != nil {
		h.fail(c, "食材分析失敗", err)
		return
	}

	h.ok(c, result)
}

// HandleValidateURL 檢查網址格式
func (h *Handler) HandleValidateURL(c *gin.Context) {
	h.ok(c, h.service.ValidateURL(c.Query("url")))
}

// HandleSupportedSites 列出有專屬選擇器的網站
func (h *Handler) HandleSupportedSites(c *gin.Context) {
	h.ok(c, h.service.SupportedSites())
}

// HandleUsage 生成式擷取用量
func (h *Handler) HandleUsage(c *gin.Context) {
	h.ok(c, h.service.Usage())
}

// HandleCatalog 替換目錄
func (h *Handler) HandleCatalog(c *gin.Context) {
	h.ok(c, h.service.Catalog())
}
