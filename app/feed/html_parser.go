package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// HTMLParser scrapes article listings from plain HTML pages using the CSS
// selectors declared in the feed's HTML configuration.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

func (p *HTMLParser) CanHandle(cfg *Config) bool {
	return cfg.Type == TypeHTML && cfg.HTML != nil
}

func (p *HTMLParser) Parse(data []byte, cfg *Config) ([]Item, error) {
	if cfg.HTML == nil {
		return nil, ErrMissingHTMLConfig
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	// The feed URL doubles as the base for resolving relative article links.
	base, err := url.Parse(cfg.URL)
	if err != nil {
		base = nil
	}

	var items []Item
	doc.Find(cfg.HTML.Items).Each(func(_ int, container *goquery.Selection) {
		title := p.extractField(container, cfg.HTML.Title)
		link := p.extractField(container, cfg.HTML.Link)

		// A container matching neither the title nor the link selector is
		// navigation chrome or an ad slot, not an article.
		if title == "" && link == "" {
			return
		}
		if title == "" {
			title = "No Title"
		}

		item := Item{
			Title:      title,
			Link:       p.resolveLink(base, link),
			FeedSource: cfg.Name,
		}

		if cfg.HTML.Description != nil {
			item.Description = p.extractField(container, *cfg.HTML.Description)
		}

		if cfg.HTML.PublishedAt != nil {
			if raw := p.extractField(container, *cfg.HTML.PublishedAt); raw != "" {
				if parsed, err := dateparse.ParseAny(raw); err == nil {
					item.PublishedAt = parsed.UTC()
				}
			}
		}

		if cfg.HTML.Category != nil {
			container.Find(cfg.HTML.Category.Selector).Each(func(_ int, match *goquery.Selection) {
				if value := p.extractValue(match, *cfg.HTML.Category); value != "" {
					item.Categories = append(item.Categories, value)
				}
			})
		}

		items = append(items, item)
	})

	return items, nil
}

// extractField applies a sub-selector to the first matching descendant of
// the item container. An empty result means the field is absent; the caller
// decides whether that is fatal.
func (p *HTMLParser) extractField(container *goquery.Selection, sel Selector) string {
	match := container.Find(sel.Selector).First()
	if match.Length() == 0 {
		return ""
	}
	return p.extractValue(match, sel)
}

func (p *HTMLParser) extractValue(match *goquery.Selection, sel Selector) string {
	switch sel.Extractor {
	case ExtractHref:
		return match.AttrOr("href", "")
	case ExtractSrc:
		return match.AttrOr("src", "")
	case ExtractDatetime:
		if value, ok := match.Attr("datetime"); ok {
			return value
		}
		return strings.TrimSpace(match.Text())
	case ExtractAttribute:
		return match.AttrOr(sel.Attribute, "")
	default:
		return strings.TrimSpace(match.Text())
	}
}

// resolveLink makes link absolute against the feed's base URL. Unparseable
// links are kept verbatim rather than dropped.
func (p *HTMLParser) resolveLink(base *url.URL, link string) string {
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if parsed.IsAbs() || base == nil {
		return link
	}

	return base.ResolveReference(parsed).String()
}
