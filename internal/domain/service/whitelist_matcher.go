package service

import (
	"slices"
	"strings"

	"github.com/stockassist/platform/internal/domain/models"
	"github.com/stockassist/platform/pkg/utils"
)

// WhitelistMatcher decides whether a request may skip authentication.
// The table is copied on construction and never modified, so a matcher is
// safe for concurrent use.
type WhitelistMatcher struct {
	entries []models.WhitelistEntry
}

// NewWhitelistMatcher creates a matcher over a copy of entries.
func NewWhitelistMatcher(entries []models.WhitelistEntry) *WhitelistMatcher {
	return &WhitelistMatcher{entries: slices.Clone(entries)}
}

// IsWhitelisted reports whether any entry matches: method compared
// case-insensitively, path matched against the entry's glob pattern.
func (m *WhitelistMatcher) IsWhitelisted(method, path string) bool {
	for _, e := range m.entries {
		if strings.EqualFold(e.Method, method) && utils.SimpleMatch(e.Pattern, path) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the table.
func (m *WhitelistMatcher) Entries() []models.WhitelistEntry {
	return slices.Clone(m.entries)
}
