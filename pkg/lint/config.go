package lint

import (
	"sort"
	"strings"
)

// Config controls which rules are enabled and their severity.
//
// Rules and categories are addressed by a key that may be a rule ID
// ("FL03"), a rule name ("dangling-endpoints") or a category
// ("DANGLING_TARGET"). Keys are matched case-insensitively.
type Config struct {
	// DisabledRules contains rule keys to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules or categories
	SeverityOverrides map[string]Severity

	// OnlyRules, when non-empty, restricts analysis to these rule keys
	OnlyRules map[string]bool

	// MinSeverity drops findings less severe than this level
	MinSeverity Severity
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
		OnlyRules:         make(map[string]bool),
		MinSeverity:       SeverityHint,
	}
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func ruleKeys(rule RuleDef) []string {
	return []string{normalizeKey(rule.ID), normalizeKey(rule.Name)}
}

// IsDisabled returns true if the rule should be skipped entirely.
func (c *Config) IsDisabled(rule RuleDef) bool {
	if c == nil {
		return false
	}
	if len(c.OnlyRules) > 0 && !c.matchesAny(c.OnlyRules, ruleKeys(rule)...) {
		return true
	}
	return c.matchesAny(c.DisabledRules, ruleKeys(rule)...)
}

// IsCategoryDisabled returns true if findings of the category are dropped.
func (c *Config) IsCategoryDisabled(cat Category) bool {
	if c == nil {
		return false
	}
	return c.matchesAny(c.DisabledRules, normalizeKey(string(cat)))
}

// GetSeverity returns the severity for a finding, applying any override.
// A category override takes precedence over a rule override.
func (c *Config) GetSeverity(rule RuleDef, cat Category, defaultSeverity Severity) Severity {
	if c == nil {
		return defaultSeverity
	}
	if sev, ok := c.lookupSeverity(normalizeKey(string(cat))); ok {
		return sev
	}
	for _, key := range ruleKeys(rule) {
		if sev, ok := c.lookupSeverity(key); ok {
			return sev
		}
	}
	return defaultSeverity
}

// Reports returns true if a finding of the given severity passes MinSeverity.
func (c *Config) Reports(sev Severity) bool {
	if c == nil {
		return true
	}
	return sev.AtLeast(c.MinSeverity)
}

// Disable disables a rule or category.
func (c *Config) Disable(key string) *Config {
	c.DisabledRules[normalizeKey(key)] = true
	return c
}

// Only restricts analysis to the given rule.
func (c *Config) Only(key string) *Config {
	c.OnlyRules[normalizeKey(key)] = true
	return c
}

// SetSeverity overrides the severity for a rule or category.
func (c *Config) SetSeverity(key string, severity Severity) *Config {
	c.SeverityOverrides[normalizeKey(key)] = severity
	return c
}

// UnknownKeys returns the sorted configured keys that name no registered
// rule or category.
func (c *Config) UnknownKeys() []string {
	if c == nil {
		return nil
	}
	known := make(map[string]bool)
	for _, rule := range GetAll() {
		for _, k := range ruleKeys(rule) {
			known[k] = true
		}
		for _, cat := range rule.Categories {
			known[normalizeKey(string(cat))] = true
		}
	}

	seen := make(map[string]bool)
	var unknown []string
	check := func(key string) {
		k := normalizeKey(key)
		if !known[k] && !seen[k] {
			seen[k] = true
			unknown = append(unknown, key)
		}
	}
	for key := range c.DisabledRules {
		check(key)
	}
	for key := range c.SeverityOverrides {
		check(key)
	}
	for key := range c.OnlyRules {
		check(key)
	}
	sort.Strings(unknown)
	return unknown
}

func (c *Config) matchesAny(set map[string]bool, keys ...string) bool {
	for k, v := range set {
		if !v {
			continue
		}
		nk := normalizeKey(k)
		for _, key := range keys {
			if nk == key {
				return true
			}
		}
	}
	return false
}

func (c *Config) lookupSeverity(key string) (Severity, bool) {
	for k, sev := range c.SeverityOverrides {
		if normalizeKey(k) == key {
			return sev, true
		}
	}
	return 0, false
}
