package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ecoswap/internal/pkg/common"
)

// markupParser 先試結構化資料，不足時改用選擇器
type markupParser struct {
	structured StructuredExtractor
	heuristic  HeuristicExtractor
}

func (p markupParser) parse(rawHTML, pageURL string) (*common.RecipeData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if r := p.structured.Parse(doc); r != nil {
		r.Clean()
		if r.Sufficient() {
			return r, nil
		}
	}

	r := p.heuristic.Parse(doc, pageURL)
	r.Clean()
	return r, nil
}

func (p markupParser) attempt(rawHTML, pageURL string, method common.ExtractionMethod) Attempt {
	r, err := p.parse(rawHTML, pageURL)
	if err != nil {
		return failed(err)
	}
	r.RawHTML = rawHTML
	if method != "" {
		r.ExtractionMethod = method
	}
	if r.Sufficient() {
		return sufficient(r)
	}
	return insufficient(r)
}

// StaticStrategy 靜態抓取後解析
type StaticStrategy struct {
	fetcher Fetcher
	parser  markupParser
}

// NewStaticStrategy 創建靜態抓取策略
func NewStaticStrategy(f Fetcher) *StaticStrategy {
	return &StaticStrategy{fetcher: f}
}

func (s *StaticStrategy) Name() string { return "static" }

func (s *StaticStrategy) Attempt(ctx context.Context, job *Job) Attempt {
	html, err := s.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		return failed(err)
	}
	job.HTML = html
	return s.parser.attempt(html, job.URL, "")
}

// DynamicStrategy 以瀏覽器渲染後重新解析
type DynamicStrategy struct {
	renderer Renderer
	parser   markupParser
}

// NewDynamicStrategy r 為 nil 時此策略直接略過
func NewDynamicStrategy(r Renderer) *DynamicStrategy {
	return &DynamicStrategy{renderer: r}
}

func (s *DynamicStrategy) Name() string { return "dynamic" }

func (s *DynamicStrategy) Attempt(ctx context.Context, job *Job) Attempt {
	if s.renderer == nil {
		return insufficient(nil)
	}

	html, err := s.renderer.Render(ctx, job.URL)
	if errors.Is(err, ErrRenderTimeout) {
		// 逾時直接交給生成式擷取，部分內容留給它使用
		job.RenderTimedOut = true
		if strings.TrimSpace(html) != "" {
			job.HTML = html
		}
		return failed(err)
	}
	if err != nil {
		return failed(err)
	}

	job.HTML = html
	return s.parser.attempt(html, job.URL, common.MethodDynamic)
}

// GenerativeStrategy 使用語言模型
type GenerativeStrategy struct {
	extractor *GenerativeExtractor
}

// NewGenerativeStrategy 創建生成式擷取策略
func NewGenerativeStrategy(e *GenerativeExtractor) *GenerativeStrategy {
	return &GenerativeStrategy{extractor: e}
}

func (s *GenerativeStrategy) Name() string { return "generative" }

func (s *GenerativeStrategy) Attempt(ctx context.Context, job *Job) Attempt {
	r, err := s.extractor.Parse(ctx, job.HTML, job.URL)
	if err != nil {
		return failed(err)
	}
	return sufficient(r)
}

// PartialRenderStrategy 渲染逾時且生成式擷取不可用時，解析部分內容
type PartialRenderStrategy struct {
	parser markupParser
}

// NewPartialRenderStrategy 創建部分內容解析策略
func NewPartialRenderStrategy() *PartialRenderStrategy {
	return &PartialRenderStrategy{}
}

func (s *PartialRenderStrategy) Name() string { return "dynamic-timeout" }

func (s *PartialRenderStrategy) Attempt(_ context.Context, job *Job) Attempt {
	if !job.RenderTimedOut || strings.TrimSpace(job.HTML) == "" {
		return insufficient(nil)
	}
	return s.parser.attempt(job.HTML, job.URL, common.MethodDynamicTimeout)
}
