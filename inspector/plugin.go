// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/lxkns/log"
)

// Engine allows container engine-specific inspector plugins to interface with
// the generic topology analysis, by creating inspectors for a particular type
// of container engine.
type Engine interface {
	// Type returns the type of container engine, such as "docker.com".
	Type() string

	// NewInspector returns an inspector talking to the container engine at
	// the specified API endpoint. If the endpoint is empty, the engine-specific
	// default endpoint is used instead.
	NewInspector(ctx context.Context, api string) (Inspector, error)
}

// Engines returns the names of the registered inspector engine plugins.
func Engines() []string {
	return plugger.Group[Engine]().Plugins()
}

// New returns a new inspector for the named engine plugin, such as "docker",
// talking to the specified API endpoint (or the engine's default endpoint if
// empty).
func New(ctx context.Context, engine string, api string) (Inspector, error) {
	for _, plugin := range plugger.Group[Engine]().PluginsSymbols() {
		if plugin.Plugin != engine {
			continue
		}
		log.Debugf("creating '%s' inspector for engine '%s' at API '%s'",
			plugin.S.Type(), engine, api)
		insp, err := plugin.S.NewInspector(ctx, api)
		if err != nil {
			return nil, fmt.Errorf("cannot inspect '%s' engine, reason: %w", engine, err)
		}
		return insp, nil
	}
	return nil, fmt.Errorf("unknown inspector engine '%s', available: %s",
		engine, strings.Join(Engines(), ", "))
}
