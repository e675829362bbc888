// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package whaletopo

import (
	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/pipeline"
)

// Option represents options to Analyze.
type Option func(*analysis)

type analysis struct {
	inspector inspector.Inspector // caller-supplied, not to be closed.
	engine    string              // inspector engine plugin name.
	host      string              // API endpoint of the inspector engine.
	stages    []pipeline.Stage
	metrics   *pipeline.Metrics
}

// WithInspector sets the runtime inspector to use for discovering images and
// containers. The caller remains responsible for closing the inspector.
func WithInspector(insp inspector.Inspector) Option {
	return func(a *analysis) {
		a.inspector = insp
	}
}

// WithEngine sets the inspector engine plugin, such as "docker", "podman",
// "containerd" or "cri", as well as its API endpoint. An empty endpoint picks the engine's default,
// which in case of Docker honors the DOCKER_HOST environment variable. An
// empty engine name keeps [DefaultEngine].
//
// WithEngine has no effect when an inspector has been set using
// [WithInspector].
func WithEngine(name string, host string) Option {
	return func(a *analysis) {
		if name != "" {
			a.engine = name
		}
		a.host = host
	}
}

// WithStages replaces the default analysis stages.
func WithStages(stages ...pipeline.Stage) Option {
	return func(a *analysis) {
		a.stages = stages
	}
}

// WithMetrics records stage durations and failures.
func WithMetrics(m *pipeline.Metrics) Option {
	return func(a *analysis) {
		a.metrics = m
	}
}
