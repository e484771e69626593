package governor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGovernor(maxRequests int, maxCost string) (*Governor, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	g := New(Config{
		MaxRequests:          maxRequests,
		MaxDailyCost:         decimal.RequireFromString(maxCost),
		ResetInterval:        24 * time.Hour,
		InputCostPerMillion:  decimal.RequireFromString("0.15"),
		OutputCostPerMillion: decimal.RequireFromString("0.60"),
	}, WithClock(clock.Now))
	return g, clock
}

func TestReserveRequestLimit(t *testing.T) {
	g, clock := newTestGovernor(2, "2.00")

	for i := 0; i < 2; i++ {
		r, err := g.Reserve()
		require.NoError(t, err)
		r.Commit(100, 10)
	}

	_, err := g.Reserve()
	assert.ErrorIs(t, err, ErrRequestLimit)

	clock.Advance(23 * time.Hour)
	_, err = g.Reserve()
	assert.ErrorIs(t, err, ErrRequestLimit)

	clock.Advance(time.Hour)
	r, err := g.Reserve()
	require.NoError(t, err)
	snap := r.Commit(0, 0)
	assert.Equal(t, 1, snap.RequestCount)
	assert.True(t, snap.DailyCost.IsZero())
}

func TestReserveCostLimit(t *testing.T) {
	g, _ := newTestGovernor(100, "0.001")

	r, err := g.Reserve()
	require.NoError(t, err)
	// 10000 * 0.15/1M + 0 = 0.0015
	snap := r.Commit(10000, 0)
	assert.Equal(t, "0.0015", snap.CostThisCall.String())

	_, err = g.Reserve()
	assert.ErrorIs(t, err, ErrCostLimit)
}

func TestCommitSnapshot(t *testing.T) {
	g, _ := newTestGovernor(50, "2.00")

	r, err := g.Reserve()
	require.NoError(t, err)
	snap := r.Commit(1_000_000, 1_000_000)

	assert.Equal(t, 1, snap.RequestCount)
	assert.Equal(t, 50, snap.MaxRequests)
	assert.Equal(t, 2_000_000, snap.TokensUsed)
	assert.True(t, decimal.RequireFromString("0.75").Equal(snap.CostThisCall))
	assert.True(t, decimal.RequireFromString("0.75").Equal(snap.DailyCost))
	assert.True(t, decimal.RequireFromString("2").Equal(snap.MaxDailyCost))

	// 重複 Commit 不會重複計費
	again := r.Commit(1_000_000, 1_000_000)
	assert.True(t, decimal.RequireFromString("0.75").Equal(again.DailyCost))
}

func TestReleaseReturnsSlot(t *testing.T) {
	g, _ := newTestGovernor(1, "2.00")

	r, err := g.Reserve()
	require.NoError(t, err)
	_, err = g.Reserve()
	assert.ErrorIs(t, err, ErrRequestLimit)

	r.Release()
	r.Release()
	assert.Equal(t, 0, g.Snapshot().RequestCount)

	_, err = g.Reserve()
	assert.NoError(t, err)
}

func TestReleaseAfterReset(t *testing.T) {
	g, clock := newTestGovernor(5, "2.00")

	old, err := g.Reserve()
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	fresh, err := g.Reserve()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Snapshot().RequestCount)

	old.Release()
	assert.Equal(t, 1, g.Snapshot().RequestCount)
	fresh.Release()
	assert.Equal(t, 0, g.Snapshot().RequestCount)
}

func TestMarkExhausted(t *testing.T) {
	g, clock := newTestGovernor(10, "2.00")

	r, err := g.Reserve()
	require.NoError(t, err)
	r.Release()
	g.MarkExhausted()

	_, err = g.Reserve()
	assert.ErrorIs(t, err, ErrRequestLimit)
	assert.Equal(t, 10, g.Snapshot().RequestCount)

	clock.Advance(24 * time.Hour)
	_, err = g.Reserve()
	assert.NoError(t, err)
}

func TestReserveConcurrent(t *testing.T) {
	g, _ := newTestGovernor(20, "100")

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r, err := g.Reserve(); err == nil {
				granted.Add(1)
				r.Commit(10, 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), granted.Load())
	assert.Equal(t, 20, g.Snapshot().RequestCount)
}

func TestNewDefaultsResetInterval(t *testing.T) {
	g := New(Config{MaxRequests: 1})
	assert.Equal(t, 24*time.Hour, g.cfg.ResetInterval)
}
