package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/araddon/dateparse"
)

// RDFParser handles RDF/RSS 1.0 documents by streaming the XML and picking
// out item elements by local name, ignoring namespaces. RSS 1.0 items carry
// their metadata in a mix of RSS and Dublin Core vocabularies (dc:date,
// dc:subject), so matching on local names covers both.
type RDFParser struct{}

func NewRDFParser() *RDFParser {
	return &RDFParser{}
}

func (p *RDFParser) CanHandle(cfg *Config) bool {
	return cfg.Type == TypeRDF
}

func (p *RDFParser) Parse(data []byte, cfg *Config) ([]Item, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	var items []Item
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read RDF document: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "item") {
			continue
		}

		item, err := p.parseItem(decoder, &start, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read RDF item: %w", err)
		}

		// Items without both a title and a link carry nothing usable.
		if item.Title == "" && item.Link == "" {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

func (p *RDFParser) parseItem(decoder *xml.Decoder, start *xml.StartElement, cfg *Config) (Item, error) {
	item := Item{FeedSource: cfg.Name}

	for {
		token, err := decoder.Token()
		if err != nil {
			return item, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			text, err := p.elementText(decoder, &t)
			if err != nil {
				return item, err
			}

			switch strings.ToLower(t.Name.Local) {
			case "title":
				item.Title = text
			case "link":
				item.Link = text
			case "description":
				item.Description = text
			case "date", "pubdate":
				if parsed, err := dateparse.ParseAny(text); err == nil {
					item.PublishedAt = parsed.UTC()
				}
			case "category", "subject":
				if text != "" {
					item.Categories = append(item.Categories, text)
				}
			}

		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, "item") {
				return item, nil
			}
		}
	}
}

// elementText consumes the element started by start and returns its trimmed
// character data.
func (p *RDFParser) elementText(decoder *xml.Decoder, start *xml.StartElement) (string, error) {
	var content string
	if err := decoder.DecodeElement(&content, start); err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
