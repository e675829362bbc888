// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FilterMode defines how a docker filter pattern is matched against container
// names.
type FilterMode string

const (
	// FilterSubstring matches names containing the pattern anywhere, which
	// includes names starting with the pattern. This is the default.
	FilterSubstring FilterMode = "substring"
	// FilterPrefix matches names starting with the pattern.
	FilterPrefix FilterMode = "prefix"
	// FilterExact matches names equal to the pattern.
	FilterExact FilterMode = "exact"
)

// FilterPolicy defines what happens to containers matched by docker filters.
type FilterPolicy string

const (
	// FilterExclude drops matching containers. This is the default.
	FilterExclude FilterPolicy = "exclude"
	// FilterInclude keeps only matching containers.
	FilterInclude FilterPolicy = "include"
)

// MissingPolicy defines what happens to container nodes of a prior topology
// that aren't observed anymore in the current analysis run.
type MissingPolicy string

const (
	// MissingPrune removes container nodes not observed anymore. This is the
	// default.
	MissingPrune MissingPolicy = "prune"
	// MissingKeep leaves container nodes not observed anymore in place.
	MissingKeep MissingPolicy = "keep"
)

// Config controls an individual analysis. The zero value is a valid
// configuration.
//
// Please note that an analysis updates DockerFilters in place, see
// [github.com/siemens/whaletopo/filter.Derive].
type Config struct {
	Name          string        `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace     string        `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	SystemID      string        `json:"systemId,omitempty" yaml:"systemId,omitempty"`
	DockerFilters []string      `json:"dockerFilters,omitempty" yaml:"dockerFilters,omitempty"`
	FilterMode    FilterMode    `json:"filterMode,omitempty" yaml:"filterMode,omitempty" validate:"omitempty,oneof=substring prefix exact"`
	FilterPolicy  FilterPolicy  `json:"filterPolicy,omitempty" yaml:"filterPolicy,omitempty" validate:"omitempty,oneof=exclude include"`
	Missing       MissingPolicy `json:"missing,omitempty" yaml:"missing,omitempty" validate:"omitempty,oneof=prune keep"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration, returning an error wrapping
// [ErrInvalidConfig] if it isn't valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return nil
}

// Mode returns the effective filter mode.
func (c *Config) Mode() FilterMode {
	if c.FilterMode == "" {
		return FilterSubstring
	}
	return c.FilterMode
}

// Policy returns the effective filter policy.
func (c *Config) Policy() FilterPolicy {
	if c.FilterPolicy == "" {
		return FilterExclude
	}
	return c.FilterPolicy
}

// MissingNodes returns the effective policy for nodes not observed anymore.
func (c *Config) MissingNodes() MissingPolicy {
	if c.Missing == "" {
		return MissingPrune
	}
	return c.Missing
}
