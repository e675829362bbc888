// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package podman

import (
	"context"

	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/inspector/moby"
	"github.com/thediveo/go-plugger/v3"
)

// Type identifying podman engines.
const Type = "podman.io"

// DefaultAPI is the API endpoint of a system podman service.
const DefaultAPI = "unix:///run/podman/podman.sock"

// Register this podman inspector engine plugin. This statically ensures that
// the Engine interface is fully implemented.
func init() {
	plugger.Group[inspector.Engine]().Register(
		&Engine{}, plugger.WithPlugin("podman"))
}

// Engine implements the inspector.Engine interface for podman.
type Engine struct{}

// Type returns the type of container engine.
func (e *Engine) Type() string { return Type }

// NewInspector returns an inspector for the podman service at the specified
// API endpoint, or at [DefaultAPI] if the endpoint is empty.
//
// We use the Docker-compatible API on podman, as the podman-specific API is
// very hard to use and podman-specific features such as pods have no place in
// our topology anyway.
func (e *Engine) NewInspector(ctx context.Context, api string) (inspector.Inspector, error) {
	if api == "" {
		api = DefaultAPI
	}
	insp, err := moby.New(ctx, api)
	if err != nil {
		return nil, err // avoid returning a typed nil
	}
	return insp, nil
}
