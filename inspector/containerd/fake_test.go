// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package containerd

import (
	"context"

	cdclient "github.com/containerd/containerd"
	"github.com/containerd/containerd/containers"
	"github.com/containerd/containerd/images"
	"github.com/containerd/containerd/namespaces"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeClient stands in for a containerd API client, with images and
// containers organized by namespace.
type fakeClient struct {
	images     map[string][]images.Image
	containers map[string][]containerState
	err        error // returned from listing.

	closed bool
}

var _ apiClient = (*fakeClient)(nil)

func (c *fakeClient) Version(context.Context) (cdclient.Version, error) {
	return cdclient.Version{Version: "1.7.30"}, c.err
}

func (c *fakeClient) Namespaces(context.Context) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	nss := []string{}
	for ns := range c.images {
		nss = append(nss, ns)
	}
	for ns := range c.containers {
		if _, ok := c.images[ns]; !ok {
			nss = append(nss, ns)
		}
	}
	return nss, nil
}

func (c *fakeClient) Images(ctx context.Context) ([]images.Image, error) {
	ns, _ := namespaces.Namespace(ctx)
	return c.images[ns], c.err
}

func (c *fakeClient) Containers(ctx context.Context) ([]containerState, error) {
	ns, _ := namespaces.Namespace(ctx)
	return c.containers[ns], c.err
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func image(name string, dgst digest.Digest) images.Image {
	return images.Image{
		Name:   name,
		Target: ocispec.Descriptor{Digest: dgst},
	}
}

func cntr(id, img string, status cdclient.ProcessStatus, labels map[string]string) containerState {
	return containerState{
		Info: containers.Container{
			ID:     id,
			Image:  img,
			Labels: labels,
		},
		Status: status,
	}
}
