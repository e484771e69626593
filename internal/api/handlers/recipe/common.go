package recipe

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecoswap/internal/pkg/common"
)

// SuccessResponse 成功回應
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func (h *Handler) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// fail 依錯誤類型回應，伺服器錯誤記錄為 error
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status, resp := common.NewErrorResponse(err, h.debug)
	_ = c.Error(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError(msg, fields...)
	} else {
		common.LogWarn(msg, fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}
