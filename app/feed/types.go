package feed

import (
	"time"
)

// Feed type identifiers as they appear in feed configuration files.
const (
	TypeRSS  = "rss"
	TypeAtom = "atom"
	TypeRDF  = "rdf"
	TypeHTML = "html5"
)

// Extractor kinds for HTML sub-selectors.
const (
	ExtractText      = "text"
	ExtractHref      = "href"
	ExtractSrc       = "src"
	ExtractDatetime  = "datetime"
	ExtractAttribute = "attribute"
)

// Item is one normalized article as produced by a parser. It only lives in
// memory during a single ingestion pass until it is persisted.
type Item struct {
	Title       string
	Link        string
	Description string
	PublishedAt time.Time
	Categories  []string
	Tags        []string
	FeedSource  string
}

// Config describes one configured feed source. Configs are loaded once at
// startup and never mutated; pattern expansion produces fresh copies.
type Config struct {
	Name        string         `yaml:"name"`
	URL         string         `yaml:"url"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	URLPatterns []string       `yaml:"url_patterns"`
	HTML        *HTMLConfig    `yaml:"html"`
	Settings    ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
	ExtractContent  bool `yaml:"extract_content"`
}

// HTMLConfig drives the CSS-selector parser for html5 feeds. Items is the
// selector for the repeating article container; Title and Link are required,
// the rest are optional.
type HTMLConfig struct {
	Items       string    `yaml:"items"`
	Title       Selector  `yaml:"title"`
	Link        Selector  `yaml:"link"`
	Description *Selector `yaml:"description"`
	PublishedAt *Selector `yaml:"published_at"`
	Category    *Selector `yaml:"category"`
}

// Selector pairs a CSS selector with an extraction rule. Attribute is only
// consulted when Extractor is "attribute".
type Selector struct {
	Selector  string `yaml:"selector"`
	Extractor string `yaml:"extractor"`
	Attribute string `yaml:"attribute"`
}
