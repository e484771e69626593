package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderAPIKey 範本 .env 內的預設金鑰，視同未設定
const PlaceholderAPIKey = "your_openai_api_key_here"

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Scraper     ScraperConfig    `mapstructure:"scraper"`
	AI          AIConfig         `mapstructure:"ai"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Governor    GovernorConfig   `mapstructure:"governor"`
	Cache       CacheConfig      `mapstructure:"cache"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// ScraperConfig 擷取流程設定
type ScraperConfig struct {
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	MaxRedirects   int           `mapstructure:"max_redirects"`
	UserAgent      string        `mapstructure:"user_agent"`
	BrowserEnabled bool          `mapstructure:"browser_enabled"`
	Headless       bool          `mapstructure:"headless"`
	ChromePath     string        `mapstructure:"chrome_path"`
}

// AIConfig 生成式擷取設定
type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxContentChars int           `mapstructure:"max_content_chars"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// GovernorConfig 生成式擷取的用量上限
type GovernorConfig struct {
	MaxRequestsPerHour   int           `mapstructure:"max_requests_per_hour"`
	MaxDailyCost         float64       `mapstructure:"max_daily_cost"`
	ResetInterval        time.Duration `mapstructure:"reset_interval"`
	InputCostPerMillion  float64       `mapstructure:"input_cost_per_million"`
	OutputCostPerMillion float64       `mapstructure:"output_cost_per_million"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// HasCredential 是否設定了可用的生成式服務金鑰
func (c *Config) HasCredential() bool {
	key := c.ActiveAPIKey()
	return key != "" && key != PlaceholderAPIKey
}

// ActiveAPIKey 依 provider 取得對應金鑰
func (c *Config) ActiveAPIKey() string {
	if c.AI.Provider == "openrouter" {
		return strings.TrimSpace(c.OpenRouter.APIKey)
	}
	return strings.TrimSpace(c.AI.APIKey)
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只依賴環境變數與預設值
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定慣用的環境變數名稱
	_ = v.BindEnv("ai.provider", "AI_PROVIDER")
	_ = v.BindEnv("ai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.model", "OPENAI_MODEL")
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("governor.max_requests_per_hour", "OPENAI_MAX_REQUESTS_PER_HOUR")
	_ = v.BindEnv("governor.max_daily_cost", "OPENAI_MAX_DAILY_COST")
	_ = v.BindEnv("scraper.fetch_timeout", "SCRAPER_FETCH_TIMEOUT")
	_ = v.BindEnv("scraper.render_timeout", "SCRAPING_TIMEOUT")
	_ = v.BindEnv("scraper.browser_enabled", "BROWSER_ENABLED")
	_ = v.BindEnv("scraper.chrome_path", "CHROME_PATH")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "ecoswap")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 擷取設定
	v.SetDefault("scraper.fetch_timeout", "15s")
	v.SetDefault("scraper.render_timeout", "30s")
	v.SetDefault("scraper.settle_delay", "2s")
	v.SetDefault("scraper.max_redirects", 5)
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("scraper.browser_enabled", true)
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.chrome_path", "")

	// 生成式擷取設定
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_content_chars", 24000)

	// OpenRouter 設定
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")

	// 用量管控
	v.SetDefault("governor.max_requests_per_hour", 50)
	v.SetDefault("governor.max_daily_cost", 2.00)
	v.SetDefault("governor.reset_interval", "24h")
	v.SetDefault("governor.input_cost_per_million", 0.15)
	v.SetDefault("governor.output_cost_per_million", 0.60)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "6h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid server request timeout")
	}

	// 驗證擷取設定
	if config.Scraper.FetchTimeout <= 0 || config.Scraper.RenderTimeout <= 0 {
		return fmt.Errorf("scraper timeouts must be positive")
	}
	if config.Scraper.FetchTimeout >= config.Scraper.RenderTimeout {
		return fmt.Errorf("fetch timeout (%s) must be shorter than render timeout (%s)",
			config.Scraper.FetchTimeout, config.Scraper.RenderTimeout)
	}
	if config.Scraper.MaxRedirects < 0 {
		return fmt.Errorf("invalid max redirects")
	}

	// 驗證生成式設定
	switch config.AI.Provider {
	case "openai", "openrouter":
	default:
		return fmt.Errorf("unknown ai provider %q", config.AI.Provider)
	}
	if config.AI.MaxContentChars <= 0 {
		return fmt.Errorf("invalid ai max content chars")
	}

	// 驗證用量上限
	if config.Governor.MaxRequestsPerHour < 0 {
		return fmt.Errorf("invalid governor max requests")
	}
	if config.Governor.MaxDailyCost < 0 {
		return fmt.Errorf("invalid governor max daily cost")
	}
	if config.Governor.ResetInterval <= 0 {
		return fmt.Errorf("invalid governor reset interval")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	return nil
}
