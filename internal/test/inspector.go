// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package test

import (
	"context"

	"github.com/siemens/whaletopo/inspector"
)

// Inspector is a canned [inspector.Inspector] for testing, returning the
// configured images and containers, or errors.
type Inspector struct {
	ImageList      []inspector.Image
	ContainerList  []inspector.Container
	ImagesErr      error
	ContainersErr  error
	ImageCalls     int
	ContainerCalls int
	Closed         bool
}

var _ inspector.Inspector = (*Inspector)(nil)

// Images returns the canned images or error.
func (i *Inspector) Images(context.Context) ([]inspector.Image, error) {
	i.ImageCalls++
	if i.ImagesErr != nil {
		return nil, i.ImagesErr
	}
	return i.ImageList, nil
}

// Containers returns the canned containers or error.
func (i *Inspector) Containers(context.Context) ([]inspector.Container, error) {
	i.ContainerCalls++
	if i.ContainersErr != nil {
		return nil, i.ContainersErr
	}
	return i.ContainerList, nil
}

// Close marks the inspector as closed.
func (i *Inspector) Close() error {
	i.Closed = true
	return nil
}

// Nginx returns an inspector seeing a single nginx:latest image and a single
// container of the specified name running it.
func Nginx(name string) *Inspector {
	return &Inspector{
		ImageList: []inspector.Image{{
			ID:          "sha256:5e8b8f2e0ed1a7c4b2d8d4d7b0e4f1c9a6f3b2a1d0c9e8f7a6b5c4d3e2f1a0b9",
			RepoTags:    []string{"nginx:latest"},
			RepoDigests: []string{"nginx@sha256:0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"},
		}},
		ContainerList: []inspector.Container{{
			ID:        "4f3c2b1a0918273645546372819a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f70",
			Name:      name,
			Image:     "nginx:latest",
			ImageID:   "sha256:5e8b8f2e0ed1a7c4b2d8d4d7b0e4f1c9a6f3b2a1d0c9e8f7a6b5c4d3e2f1a0b9",
			State:     "running",
			Status:    "Up 5 minutes",
			IPAddress: "172.17.0.2",
		}},
	}
}
