package common

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// ValidateRecipeURL 檢查網址是否可供分析
func ValidateRecipeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL.WithMessage("Recipe URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL.WithMessage("Invalid URL format.").Wrap(err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL.WithMessage("Invalid protocol. Use HTTP or HTTPS.")
	}

	if len(u.Hostname()) < 3 {
		return nil, ErrInvalidURL.WithMessage("Invalid hostname.")
	}

	return u, nil
}

// NormalizedHost 取得小寫且去除 www. 的主機名稱
func NormalizedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Truncate 以 rune 為單位截斷字串
func Truncate(s string, max int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return fmt.Sprintf("%s%s", string(runes[:max]), suffix)
}
