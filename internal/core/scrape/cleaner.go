package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ecoswap/internal/pkg/common"
)

const noiseSelector = "script, style, nav, footer, meta, link, noscript, iframe, svg, " +
	".ad, .advertisement, .sidebar, .related-articles, .comments, .navigation"

var mainContentSelectors = []string{"main", ".main-content", ".recipe-content", "article", ".entry-content"}

// MainText 移除雜訊節點後取出主要內容文字，並截斷到 maxChars
func MainText(rawHTML string, maxChars int) (string, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find(noiseSelector).Remove()

	var text string
	for _, s := range mainContentSelectors {
		if text = common.CollapseWhitespace(doc.Find(s).First().Text()); text != "" {
			break
		}
	}
	if text == "" {
		text = common.CollapseWhitespace(doc.Find("body").Text())
	}

	if maxChars > 0 {
		text = common.Truncate(text, maxChars, "")
	}
	return text, nil
}
