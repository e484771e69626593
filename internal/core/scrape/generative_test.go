package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoswap/internal/core/ai/governor"
	"ecoswap/internal/core/ai/provider"
	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
)

const validModelJSON = `{"title":"Chili","description":"Warm","ingredients":["1 lb beef","2 cans beans",""],"instructions":["Brown the beef.","Add beans."],"servings":4}`

type fakeProvider struct {
	mu       sync.Mutex
	content  string
	err      error
	usage    provider.Usage
	calls    int
	requests []*provider.Request
}

func (f *fakeProvider) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content, Usage: f.usage}, nil
}

func (f *fakeProvider) GetModel() string          { return "fake-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestGovernor(maxRequests int) *governor.Governor {
	return governor.New(governor.Config{
		MaxRequests:          maxRequests,
		MaxDailyCost:         decimal.NewFromInt(2),
		ResetInterval:        24 * time.Hour,
		InputCostPerMillion:  decimal.RequireFromString("0.15"),
		OutputCostPerMillion: decimal.RequireFromString("0.60"),
	})
}

func newTestGenerative(p provider.Provider, g *governor.Governor) *GenerativeExtractor {
	return NewGenerativeExtractor(p, g, config.AIConfig{
		MaxTokens:       2000,
		Temperature:     0.1,
		MaxContentChars: 24000,
	})
}

func TestGenerativeNoCredential(t *testing.T) {
	e := newTestGenerative(nil, newTestGovernor(5))
	_, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
	assert.ErrorIs(t, err, ErrNoCredential)

	var nilExtractor *GenerativeExtractor
	_, err = nilExtractor.Parse(context.Background(), "", "https://example.org")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestGenerativeSuccess(t *testing.T) {
	p := &fakeProvider{
		content: "```json\n" + validModelJSON + "\n```",
		usage:   provider.Usage{PromptTokens: 1000, CompletionTokens: 200, TotalTokens: 1200},
	}
	g := newTestGovernor(5)
	e := newTestGenerative(p, g)

	r, err := e.Parse(context.Background(), `<html><body><main>Chili with beans</main><script>x()</script></body></html>`, "https://example.org/chili")
	require.NoError(t, err)

	assert.Equal(t, "Chili", r.Title)
	assert.Equal(t, []string{"1 lb beef", "2 cans beans"}, r.Ingredients)
	assert.Equal(t, "4", r.Servings)
	assert.Equal(t, common.MethodGenerative, r.ExtractionMethod)

	require.NotNil(t, r.GenerativeUsage)
	assert.Equal(t, 1, r.GenerativeUsage.RequestCount)
	assert.Equal(t, 1200, r.GenerativeUsage.TokensUsed)
	// 1000*0.15/1M + 200*0.60/1M
	assert.True(t, decimal.RequireFromString("0.00027").Equal(r.GenerativeUsage.CostThisCall))

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.True(t, req.JSONMode)
	assert.Equal(t, 0.1, req.Temperature)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Equal(t, systemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "Chili with beans")
	assert.NotContains(t, req.Messages[1].Content, "x()")
	assert.Contains(t, req.Messages[1].Content, "URL: https://example.org/chili")
}

func TestGenerativeEmptyHTML(t *testing.T) {
	p := &fakeProvider{content: validModelJSON}
	e := newTestGenerative(p, newTestGovernor(5))

	_, err := e.Parse(context.Background(), "  ", "https://example.org/slow")
	require.NoError(t, err)

	prompt := p.requests[0].Messages[1].Content
	assert.Contains(t, prompt, "No HTML content available. URL: https://example.org/slow")
	assert.Contains(t, prompt, "could not be loaded")
}

func TestGenerativeInvalidOutputNotCharged(t *testing.T) {
	outputs := []string{
		"I could not find a recipe.",
		`{"title":"","ingredients":["1 egg"]}`,
		`{"title":"Soup","ingredients":[]}`,
		`{"title":"Soup","ingredients":[{"name":"x"}]}`,
		`{"title": "Soup", "ingredients": ["1 egg"]`,
	}

	for _, out := range outputs {
		t.Run(out, func(t *testing.T) {
			g := newTestGovernor(5)
			e := newTestGenerative(&fakeProvider{content: out}, g)

			_, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
			assert.ErrorIs(t, err, ErrInvalidModelOutput)

			snap := g.Snapshot()
			assert.Equal(t, 0, snap.RequestCount)
			assert.True(t, snap.DailyCost.IsZero())
		})
	}
}

func TestGenerativeRateLimitExhaustsGovernor(t *testing.T) {
	p := &fakeProvider{err: fmt.Errorf("%w: slow down", provider.ErrRateLimited)}
	g := newTestGovernor(5)
	e := newTestGenerative(p, g)

	_, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
	assert.ErrorIs(t, err, provider.ErrRateLimited)
	assert.Equal(t, 5, g.Snapshot().RequestCount)

	_, err = e.Parse(context.Background(), "<p>x</p>", "https://example.org")
	assert.ErrorIs(t, err, governor.ErrRequestLimit)
	assert.Equal(t, 1, p.Calls())
}

func TestGenerativeOtherErrorReleasesSlot(t *testing.T) {
	g := newTestGovernor(5)
	e := newTestGenerative(&fakeProvider{err: errors.New("connection reset")}, g)

	_, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
	require.Error(t, err)
	assert.Equal(t, 0, g.Snapshot().RequestCount)
}

func TestGenerativeGovernorLimitSkipsClient(t *testing.T) {
	p := &fakeProvider{content: validModelJSON}
	e := newTestGenerative(p, newTestGovernor(2))

	for i := 0; i < 2; i++ {
		_, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
		require.NoError(t, err)
	}

	r, err := e.Parse(context.Background(), "<p>x</p>", "https://example.org")
	assert.Nil(t, r)
	assert.ErrorIs(t, err, governor.ErrRequestLimit)
	assert.Equal(t, 2, p.Calls())
}

func TestGenerativeTruncatesContent(t *testing.T) {
	p := &fakeProvider{content: validModelJSON}
	e := NewGenerativeExtractor(p, newTestGovernor(5), config.AIConfig{MaxContentChars: 50})

	page := "<main>" + strings.Repeat("a", 500) + "</main>"
	_, err := e.Parse(context.Background(), page, "https://example.org")
	require.NoError(t, err)

	prompt := p.requests[0].Messages[1].Content
	assert.Contains(t, prompt, strings.Repeat("a", 50))
	assert.NotContains(t, prompt, strings.Repeat("a", 51))
}
