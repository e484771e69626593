package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecoswap/internal/pkg/common"
)

const dedupCleanupInterval = 10 * time.Minute

// deduplicator 記錄最近的 POST 請求指紋
type deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	now      func() time.Time
}

func newDeduplicator(window time.Duration, now func() time.Time) *deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      now,
	}
}

// seen 指紋在時間窗內出現過時回傳 true，否則記錄下來
func (d *deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// cleanup 移除過舊的指紋
func (d *deduplicator) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.requests {
		if now.Sub(t) > 10*d.window {
			delete(d.requests, k)
		}
	}
}

// Deduplication 請求去重中間件，時間窗內相同的 POST 請求回傳 429
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := newDeduplicator(window, time.Now)

	go func() {
		ticker := time.NewTicker(dedupCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			d.cleanup()
		}
	}()

	return dedupHandler(d)
}

func dedupHandler(d *deduplicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + bodyHash

		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			status, resp := common.NewErrorResponse(common.ErrTooManyRequests.WithMessage("Request too frequent"), false)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Next()
	}
}
