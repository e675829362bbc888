// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package inspector

import (
	"context"
	"time"
)

// Image describes a container image as seen by a container runtime.
type Image struct {
	ID          string    // content-addressable image ID, such as "sha256:...".
	RepoTags    []string  // such as "nginx:latest"; might be empty.
	RepoDigests []string  // such as "nginx@sha256:..."; might be empty.
	Created     time.Time // zero if unknown.
}

// Container describes an alive container as seen by a container runtime.
type Container struct {
	ID           string            // runtime-specific container ID.
	Name         string            // container name, without any leading slash.
	Image        string            // image reference the container was created from.
	ImageID      string            // content-addressable ID of the container's image.
	State        string            // such as "running" or "paused".
	Status       string            // human-readable status.
	IPAddress    string            // first IP address found; empty for host networking.
	Hostname     string            // might be empty if not known.
	StartedAt    time.Time         // zero if unknown.
	RestartCount int               // number of restarts, if known.
	Labels       map[string]string // container labels.
}

// Inspector enumerates the images and alive containers of a container runtime.
// Inspectors are used from a single analysis at a time.
type Inspector interface {
	// Images returns the images currently available to the runtime.
	Images(ctx context.Context) ([]Image, error)
	// Containers returns the currently alive containers of the runtime.
	Containers(ctx context.Context) ([]Container, error)
	// Close releases any resources, such as API connections.
	Close() error
}
