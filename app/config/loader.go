package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/feedhive/feedhive/app/feed"
)

// Loader reads feed definitions from a directory, one YAML file per feed.
type Loader struct {
	feedsDir string
}

func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// LoadAll loads every .yaml/.yml file in the feeds directory, in filename
// order. A missing directory yields an empty list, not an error.
func (l *Loader) LoadAll() ([]*feed.Config, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	configs := make([]*feed.Config, 0, len(files))
	for _, file := range files {
		cfg, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		configs = append(configs, cfg)
		slog.Debug("Loaded feed configuration", "file", file, "feed", cfg.Name)
	}

	return configs, nil
}

func (l *Loader) loadFile(path string) (*feed.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg feed.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&cfg, path)

	return &cfg, nil
}

func (l *Loader) setDefaults(cfg *feed.Config, path string) {
	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if cfg.Settings.RefreshInterval == 0 {
		cfg.Settings.RefreshInterval = 3600 // seconds
	}
	if cfg.Settings.Timeout == 0 {
		cfg.Settings.Timeout = 30 // seconds
	}
}

// validate checks structural invariants. Feed types are deliberately not
// restricted to the known set here: an unrecognized type surfaces later as
// a per-feed "no parser found" error instead of blocking startup.
func (l *Loader) validate(cfg *feed.Config) error {
	if cfg.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	if cfg.Type == feed.TypeHTML && cfg.HTML == nil {
		return fmt.Errorf("html feeds require an html selector configuration")
	}
	if cfg.Type != feed.TypeHTML && cfg.HTML != nil {
		return fmt.Errorf("html selector configuration is only valid for type %q", feed.TypeHTML)
	}

	if cfg.HTML != nil {
		if cfg.HTML.Items == "" {
			return fmt.Errorf("html items selector is required")
		}
		selectors := map[string]*feed.Selector{
			"title":        &cfg.HTML.Title,
			"link":         &cfg.HTML.Link,
			"description":  cfg.HTML.Description,
			"published_at": cfg.HTML.PublishedAt,
			"category":     cfg.HTML.Category,
		}
		for field, sel := range selectors {
			if sel == nil {
				continue
			}
			if err := l.validateSelector(sel); err != nil {
				return fmt.Errorf("invalid %s selector: %w", field, err)
			}
		}
		if cfg.HTML.Title.Selector == "" {
			return fmt.Errorf("html title selector is required")
		}
		if cfg.HTML.Link.Selector == "" {
			return fmt.Errorf("html link selector is required")
		}
	}

	return nil
}

func (l *Loader) validateSelector(sel *feed.Selector) error {
	switch sel.Extractor {
	case "", feed.ExtractText, feed.ExtractHref, feed.ExtractSrc, feed.ExtractDatetime:
	case feed.ExtractAttribute:
		if sel.Attribute == "" {
			return fmt.Errorf("attribute extractor requires an attribute name")
		}
	default:
		return fmt.Errorf("unknown extractor: %q", sel.Extractor)
	}

	return nil
}
