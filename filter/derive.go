// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package filter

import (
	"strings"

	"github.com/siemens/whaletopo/model"
	"golang.org/x/exp/slices"
)

// Derive updates the docker filters of the specified configuration in place,
// based on the prior system snapshot (which might be nil), and returns the
// very same configuration for convenience.
//
// Filters already present in the configuration retain their order, with any
// duplicates collapsed. Derive then appends the prior system's name, unless
// already present, followed by the names of the prior system's docker
// container definitions that aren't already present. If the prior system has
// a name, definition names starting with it are skipped.
//
// Derive is idempotent.
func Derive(cfg *model.Config, prior *model.System) *model.Config {
	filters := dedup(cfg.DockerFilters)
	if prior == nil {
		cfg.DockerFilters = filters
		return cfg
	}
	if prior.Name != "" && !slices.Contains(filters, prior.Name) {
		filters = append(filters, prior.Name)
	}
	for _, cdef := range prior.ContainerDefinitions {
		if cdef == nil || cdef.Type != model.Docker || slices.Contains(filters, cdef.Name) {
			continue
		}
		if prior.Name != "" && strings.HasPrefix(cdef.Name, prior.Name) {
			continue
		}
		filters = append(filters, cdef.Name)
	}
	cfg.DockerFilters = filters
	return cfg
}

// dedup returns the filters without duplicates, keeping the first occurrence
// of each filter. It never returns nil.
func dedup(filters []string) []string {
	unique := make([]string, 0, len(filters))
	for _, filter := range filters {
		if slices.Contains(unique, filter) {
			continue
		}
		unique = append(unique, filter)
	}
	return unique
}
