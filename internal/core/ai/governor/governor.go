package governor

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
	"ecoswap/internal/pkg/metrics"
)

var (
	// ErrRequestLimit 請求次數已達上限
	ErrRequestLimit = errors.New("generative request limit reached")
	// ErrCostLimit 每日花費已達上限
	ErrCostLimit = errors.New("generative daily cost limit reached")
)

var perMillion = decimal.NewFromInt(1_000_000)

// Config 用量上限設定
type Config struct {
	MaxRequests          int
	MaxDailyCost         decimal.Decimal
	ResetInterval        time.Duration
	InputCostPerMillion  decimal.Decimal
	OutputCostPerMillion decimal.Decimal
}

// ConfigFrom 由應用設定轉換
func ConfigFrom(cfg config.GovernorConfig) Config {
	return Config{
		MaxRequests:          cfg.MaxRequestsPerHour,
		MaxDailyCost:         decimal.NewFromFloat(cfg.MaxDailyCost),
		ResetInterval:        cfg.ResetInterval,
		InputCostPerMillion:  decimal.NewFromFloat(cfg.InputCostPerMillion),
		OutputCostPerMillion: decimal.NewFromFloat(cfg.OutputCostPerMillion),
	}
}

// Option 設定 Governor 的選項
type Option func(*Governor)

// WithClock 注入時鐘
func WithClock(now func() time.Time) Option {
	return func(g *Governor) {
		g.now = now
	}
}

// Governor 管控生成式服務的請求次數與花費，計數只存在記憶體中
type Governor struct {
	mu        sync.Mutex
	cfg       Config
	now       func() time.Time
	count     int
	cost      decimal.Decimal
	lastReset time.Time
	// epoch 每次重置加一，用來辨識跨越重置的預留
	epoch uint64
}

// New 創建 Governor
func New(cfg Config, opts ...Option) *Governor {
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = 24 * time.Hour
	}
	g := &Governor{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	g.lastReset = g.now()
	return g
}

// Reservation 預留的一次請求額度，必須 Commit 或 Release
type Reservation struct {
	g     *Governor
	epoch uint64
	done  bool
}

// Reserve 檢查上限並預留一次請求；檢查與遞增在同一把鎖內完成
func (g *Governor) Reserve() (*Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfDue()

	if g.count >= g.cfg.MaxRequests {
		metrics.GovernorRejections.WithLabelValues("requests").Inc()
		common.LogWarn("生成式請求已達上限",
			zap.Int("request_count", g.count),
			zap.Int("max_requests", g.cfg.MaxRequests),
		)
		return nil, ErrRequestLimit
	}
	if g.cost.GreaterThanOrEqual(g.cfg.MaxDailyCost) {
		metrics.GovernorRejections.WithLabelValues("cost").Inc()
		common.LogWarn("生成式花費已達上限",
			zap.String("daily_cost", g.cost.StringFixed(4)),
			zap.String("max_daily_cost", g.cfg.MaxDailyCost.StringFixed(2)),
		)
		return nil, ErrCostLimit
	}

	g.count++
	return &Reservation{g: g, epoch: g.epoch}, nil
}

// Commit 記錄成功呼叫的花費並回傳快照
func (r *Reservation) Commit(promptTokens, completionTokens int) common.UsageSnapshot {
	g := r.g
	g.mu.Lock()
	defer g.mu.Unlock()

	cost := g.Cost(promptTokens, completionTokens)
	if !r.done {
		r.done = true
		if r.epoch != g.epoch {
			// 預留後已重置，計入新的週期
			g.count++
		}
		g.cost = g.cost.Add(cost)
	}

	snap := g.snapshotLocked()
	snap.TokensUsed = promptTokens + completionTokens
	snap.CostThisCall = cost
	return snap
}

// Release 歸還未使用的預留
func (r *Reservation) Release() {
	g := r.g
	g.mu.Lock()
	defer g.mu.Unlock()

	if r.done {
		return
	}
	r.done = true
	if r.epoch == g.epoch && g.count > 0 {
		g.count--
	}
}

// MarkExhausted 服務端回報額度不足時，將本週期請求數設為上限
func (g *Governor) MarkExhausted() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count < g.cfg.MaxRequests {
		g.count = g.cfg.MaxRequests
	}
	common.LogWarn("生成式服務回報速率限制，暫停至下次重置",
		zap.Time("last_reset", g.lastReset),
		zap.Duration("reset_interval", g.cfg.ResetInterval),
	)
}

// Cost 依 token 數估算花費（美元）
func (g *Governor) Cost(promptTokens, completionTokens int) decimal.Decimal {
	in := decimal.NewFromInt(int64(promptTokens)).Mul(g.cfg.InputCostPerMillion).Div(perMillion)
	out := decimal.NewFromInt(int64(completionTokens)).Mul(g.cfg.OutputCostPerMillion).Div(perMillion)
	return in.Add(out)
}

// Snapshot 目前用量
func (g *Governor) Snapshot() common.UsageSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetIfDue()
	return g.snapshotLocked()
}

func (g *Governor) snapshotLocked() common.UsageSnapshot {
	return common.UsageSnapshot{
		RequestCount: g.count,
		DailyCost:    g.cost,
		MaxRequests:  g.cfg.MaxRequests,
		MaxDailyCost: g.cfg.MaxDailyCost,
		LastReset:    g.lastReset,
	}
}

func (g *Governor) resetIfDue() {
	now := g.now()
	if now.Sub(g.lastReset) < g.cfg.ResetInterval {
		return
	}
	common.LogInfo("重置生成式用量計數",
		zap.Int("request_count", g.count),
		zap.String("daily_cost", g.cost.StringFixed(4)),
	)
	g.count = 0
	g.cost = decimal.Zero
	g.lastReset = now
	g.epoch++
}
