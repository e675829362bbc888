// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package filter

import (
	"strings"

	"github.com/siemens/whaletopo/model"
)

// Matcher decides which containers to keep, based on their names.
type Matcher struct {
	system  string // own system name, marking the system's own containers.
	filters []string
	mode    model.FilterMode
	policy  model.FilterPolicy
}

// NewMatcher returns a Matcher for the docker filters, filter mode and filter
// policy of the specified configuration. The system name, if not empty,
// marks the system's own containers, which are never excluded.
func NewMatcher(cfg *model.Config, system string) *Matcher {
	return &Matcher{
		system:  system,
		filters: cfg.DockerFilters,
		mode:    cfg.Mode(),
		policy:  cfg.Policy(),
	}
}

// Match returns the first filter matching the specified container name, and
// false if none matches. Empty filters never match.
func (m *Matcher) Match(name string) (string, bool) {
	for _, filter := range m.filters {
		if filter == "" {
			continue
		}
		var ok bool
		switch m.mode {
		case model.FilterPrefix:
			ok = strings.HasPrefix(name, filter)
		case model.FilterExact:
			ok = name == filter
		default:
			ok = strings.Contains(name, filter)
		}
		if ok {
			return filter, true
		}
	}
	return "", false
}

// Keep reports whether a container with the specified name survives
// filtering: when excluding, it must either belong to the system itself, that
// is, have the system name as its prefix, or not match any filter. When
// including, it must match at least one filter.
func (m *Matcher) Keep(name string) bool {
	_, matched := m.Match(name)
	if m.policy == model.FilterInclude {
		return matched
	}
	if m.system != "" && strings.HasPrefix(name, m.system) {
		return true
	}
	return !matched
}
