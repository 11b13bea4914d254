package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSParser handles RSS 2.0 and Atom feeds via gofeed. Some sites serve
// RDF/RSS 1.0 documents under an "rss" content type; when gofeed rejects
// such a document the raw bytes are handed to the RDF parser instead.
type RSSParser struct {
	gofeedParser *gofeed.Parser
	rdf          *RDFParser
}

func NewRSSParser(rdf *RDFParser) *RSSParser {
	return &RSSParser{
		gofeedParser: gofeed.NewParser(),
		rdf:          rdf,
	}
}

// CanHandle claims every syndication type, including "rdf": the RDF parser
// is only reached through the parse-error fallback or via this claim.
func (p *RSSParser) CanHandle(cfg *Config) bool {
	switch cfg.Type {
	case "", TypeRSS, TypeAtom, TypeRDF:
		return true
	}
	return false
}

func (p *RSSParser) Parse(data []byte, cfg *Config) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "RDF") {
			return p.rdf.Parse(data, cfg)
		}
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, p.normalizeEntry(entry, cfg))
	}

	return items, nil
}

func (p *RSSParser) normalizeEntry(entry *gofeed.Item, cfg *Config) Item {
	item := Item{
		Title:       cmp.Or(entry.Title, "No Title"),
		Link:        entry.Link,
		Description: entry.Description,
		FeedSource:  cfg.Name,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = entry.PublishedParsed.UTC()
	}

	if entry.Categories != nil {
		item.Categories = entry.Categories
	}

	return item
}
