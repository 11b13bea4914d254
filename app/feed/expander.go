package feed

import (
	"strings"
)

// PatternToken is the literal placeholder replaced during expansion. It is a
// plain substring, not a template expression.
const PatternToken = "{pattern}"

// Expand turns a config carrying URL patterns into one concrete config per
// pattern value, replacing every occurrence of the placeholder token in URL,
// name and description. A config without patterns is returned as-is. The
// HTML sub-configuration is shared by reference across all copies.
func Expand(cfg *Config) []*Config {
	if len(cfg.URLPatterns) == 0 {
		return []*Config{cfg}
	}

	expanded := make([]*Config, 0, len(cfg.URLPatterns))
	for _, pattern := range cfg.URLPatterns {
		copied := *cfg
		copied.URL = strings.ReplaceAll(cfg.URL, PatternToken, pattern)
		copied.Name = strings.ReplaceAll(cfg.Name, PatternToken, pattern)
		copied.Description = strings.ReplaceAll(cfg.Description, PatternToken, pattern)
		copied.URLPatterns = nil
		expanded = append(expanded, &copied)
	}

	return expanded
}

// ExpandAll flat-maps Expand over configs, preserving input order.
func ExpandAll(configs []*Config) []*Config {
	expanded := make([]*Config, 0, len(configs))
	for _, cfg := range configs {
		expanded = append(expanded, Expand(cfg)...)
	}
	return expanded
}
