package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrNoParserFound is returned when no registered parser claims a config.
	ErrNoParserFound = errors.New("no parser found for feed configuration")
	// ErrMissingHTMLConfig is returned when an html5 feed has no selector
	// configuration attached.
	ErrMissingHTMLConfig = errors.New("html feed is missing selector configuration")
)

// Parser converts raw fetched content into normalized items.
type Parser interface {
	CanHandle(cfg *Config) bool
	Parse(data []byte, cfg *Config) ([]Item, error)
}

// ParserSelector holds the ordered parser list. The RSS/Atom parser is
// registered first and claims everything that is not an HTML feed, so
// registration order matters.
type ParserSelector struct {
	parsers []Parser
}

func NewParserSelector() *ParserSelector {
	rdf := NewRDFParser()
	return &ParserSelector{
		parsers: []Parser{
			NewRSSParser(rdf),
			NewHTMLParser(),
		},
	}
}

// ParserFor returns the first registered parser claiming the config.
func (s *ParserSelector) ParserFor(cfg *Config) (Parser, error) {
	for _, p := range s.parsers {
		if p.CanHandle(cfg) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: type %q", ErrNoParserFound, cfg.Type)
}
