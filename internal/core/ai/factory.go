package ai

import (
	"go.uber.org/zap"

	"ecoswap/internal/core/ai/openai"
	"ecoswap/internal/core/ai/openrouter"
	"ecoswap/internal/core/ai/provider"
	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// NewProvider 依設定建立生成式服務客戶端，未設定金鑰時回傳 nil
func NewProvider(cfg *config.Config) provider.Provider {
	if !cfg.HasCredential() {
		common.LogWarn("未設定生成式服務金鑰，生成式擷取停用",
			zap.String("provider", cfg.AI.Provider),
		)
		return nil
	}

	switch cfg.AI.Provider {
	case ProviderOpenRouter:
		common.LogInfo("使用 OpenRouter 生成式服務",
			zap.String("model", cfg.OpenRouter.Model),
			zap.String("api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		)
		return openrouter.NewClient(provider.Config{
			APIKey:  cfg.ActiveAPIKey(),
			Model:   cfg.OpenRouter.Model,
			Timeout: cfg.AI.Timeout,
			BaseURL: cfg.OpenRouter.BaseURL,
		})
	default:
		common.LogInfo("使用 OpenAI 生成式服務",
			zap.String("model", cfg.AI.Model),
			zap.String("api_key", config.MaskAPIKey(cfg.AI.APIKey)),
		)
		return openai.NewClient(provider.Config{
			APIKey:  cfg.ActiveAPIKey(),
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
			BaseURL: cfg.AI.BaseURL,
		})
	}
}

// ModelName 目前設定使用的模型
func ModelName(cfg *config.Config) string {
	if cfg.AI.Provider == ProviderOpenRouter {
		return cfg.OpenRouter.Model
	}
	return cfg.AI.Model
}
