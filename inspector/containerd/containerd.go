// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package containerd

import (
	"context"
	"slices"
	"strings"
	"time"

	cdclient "github.com/containerd/containerd"
	"github.com/containerd/containerd/containers"
	"github.com/containerd/containerd/errdefs"
	"github.com/containerd/containerd/images"
	"github.com/containerd/containerd/namespaces"
	"github.com/siemens/whaletopo/inspector"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/lxkns/log"
)

// Type identifying containerd engines.
const Type = "containerd.io"

// DefaultAPI is the API endpoint of a system containerd daemon.
const DefaultAPI = "/run/containerd/containerd.sock"

// NameLabel is the label nerdctl stores a container's name in.
const NameLabel = "nerdctl/name"

// mobyNamespace is the containerd namespace managed by Docker; its
// containers are better inspected through the Docker API.
const mobyNamespace = "moby"

// versionTimeout limits checking that an API endpoint is actually serving.
const versionTimeout = 5 * time.Second

// Register this containerd inspector engine plugin. This statically ensures
// that the Engine interface is fully implemented.
func init() {
	plugger.Group[inspector.Engine]().Register(
		&Engine{}, plugger.WithPlugin("containerd"))
}

// Engine implements the inspector.Engine interface for containerd.
type Engine struct{}

// Type returns the type of container engine.
func (e *Engine) Type() string { return Type }

// NewInspector returns an inspector for the containerd daemon at the
// specified API endpoint, or at [DefaultAPI] if the endpoint is empty.
func (e *Engine) NewInspector(ctx context.Context, api string) (inspector.Inspector, error) {
	insp, err := New(ctx, api)
	if err != nil {
		return nil, err // avoid returning a typed nil
	}
	return insp, nil
}

// apiClient is the subset of the containerd client API we need. Except for
// listing the namespaces, the namespace to work on is passed in the context.
type apiClient interface {
	Version(ctx context.Context) (cdclient.Version, error)
	Namespaces(ctx context.Context) ([]string, error)
	Images(ctx context.Context) ([]images.Image, error)
	Containers(ctx context.Context) ([]containerState, error)
	Close() error
}

// containerState is a container's metadata together with the status of its
// task; containers without a task are stopped.
type containerState struct {
	Info   containers.Container
	Status cdclient.ProcessStatus
}

// client adapts the containerd client to apiClient.
type client struct {
	*cdclient.Client
}

func (c client) Namespaces(ctx context.Context) ([]string, error) {
	return c.NamespaceService().List(ctx)
}

func (c client) Images(ctx context.Context) ([]images.Image, error) {
	return c.ImageService().List(ctx)
}

func (c client) Containers(ctx context.Context) ([]containerState, error) {
	cntrs, err := c.Client.Containers(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]containerState, 0, len(cntrs))
	for _, cntr := range cntrs {
		info, err := cntr.Info(ctx)
		if err != nil {
			if errdefs.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		state := containerState{Info: info, Status: cdclient.Stopped}
		task, err := cntr.Task(ctx, nil)
		if err != nil {
			if !errdefs.IsNotFound(err) {
				return nil, err
			}
			states = append(states, state)
			continue
		}
		status, err := task.Status(ctx)
		if err != nil {
			if !errdefs.IsNotFound(err) {
				return nil, err
			}
			states = append(states, state)
			continue
		}
		state.Status = status.Status
		states = append(states, state)
	}
	return states, nil
}

// Inspector enumerates images and containers of a containerd engine, across
// all its namespaces except Docker's.
type Inspector struct {
	client apiClient
}

var _ inspector.Inspector = (*Inspector)(nil)

// New returns an Inspector talking to the containerd API at the specified
// endpoint, such as "/run/containerd/containerd.sock", or at [DefaultAPI] if
// the endpoint is empty. New checks that the endpoint is actually served
// before returning.
func New(ctx context.Context, api string) (*Inspector, error) {
	if api == "" {
		api = DefaultAPI
	}
	api = strings.TrimPrefix(api, "unix://")
	log.Debugf("dialing containerd endpoint '%s'", api)
	cli, err := cdclient.New(api, cdclient.WithTimeout(versionTimeout))
	if err != nil {
		return nil, err
	}
	// As containerd's go client will accept more or less any API pathname
	// we throw at it, we need to check that we actually can talk with the
	// daemon. Querying the daemon's version information suffices.
	versionctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	if _, err := cli.Version(versionctx); err != nil {
		_ = cli.Close()
		return nil, err
	}
	log.Debugf("connected to containerd API at %s", api)
	return newInspector(client{cli}), nil
}

func newInspector(cli apiClient) *Inspector {
	return &Inspector{client: cli}
}

// Close the connection to the containerd API.
func (i *Inspector) Close() error {
	return i.client.Close()
}

// namespaces returns the containerd namespaces to inspect, in order.
func (i *Inspector) namespaces(ctx context.Context) ([]string, error) {
	nss, err := i.client.Namespaces(ctx)
	if err != nil {
		return nil, err
	}
	nss = slices.DeleteFunc(nss, func(ns string) bool { return ns == mobyNamespace })
	slices.Sort(nss)
	return nss, nil
}

// Images returns the images of the containerd engine. Image names referring
// to the same content are combined into a single image.
func (i *Inspector) Images(ctx context.Context) ([]inspector.Image, error) {
	nss, err := i.namespaces(ctx)
	if err != nil {
		return nil, err
	}
	var imgs []inspector.Image
	index := map[string]int{}
	for _, ns := range nss {
		nsimgs, err := i.client.Images(namespaces.WithNamespace(ctx, ns))
		if err != nil {
			return nil, err
		}
		for _, img := range nsimgs {
			imgs = addImage(imgs, index, img)
		}
	}
	log.Debugf("found %d containerd images", len(imgs))
	return imgs, nil
}

// addImage adds the named image to the list of images, merging its name
// into an already known image with the same content digest.
func addImage(imgs []inspector.Image, index map[string]int, img images.Image) []inspector.Image {
	id := img.Target.Digest.String()
	idx, ok := index[id]
	if !ok {
		idx = len(imgs)
		index[id] = idx
		imgs = append(imgs, inspector.Image{ID: id, Created: img.CreatedAt.UTC()})
	}
	switch {
	case strings.HasPrefix(img.Name, "sha256:"):
		// image id references carry no repository information.
	case strings.Contains(img.Name, "@"):
		if !slices.Contains(imgs[idx].RepoDigests, img.Name) {
			imgs[idx].RepoDigests = append(imgs[idx].RepoDigests, img.Name)
		}
	default:
		if !slices.Contains(imgs[idx].RepoTags, img.Name) {
			imgs[idx].RepoTags = append(imgs[idx].RepoTags, img.Name)
		}
	}
	return imgs
}

// Containers returns the alive, that is, running or paused containers of the
// containerd engine.
func (i *Inspector) Containers(ctx context.Context) ([]inspector.Container, error) {
	nss, err := i.namespaces(ctx)
	if err != nil {
		return nil, err
	}
	var cntrs []inspector.Container
	for _, ns := range nss {
		nsctx := namespaces.WithNamespace(ctx, ns)
		nsimgs, err := i.client.Images(nsctx)
		if err != nil {
			return nil, err
		}
		digests := make(map[string]string, len(nsimgs))
		for _, img := range nsimgs {
			digests[img.Name] = img.Target.Digest.String()
		}
		states, err := i.client.Containers(nsctx)
		if err != nil {
			return nil, err
		}
		for _, state := range states {
			if state.Status != cdclient.Running && state.Status != cdclient.Paused {
				continue
			}
			cntrs = append(cntrs, inspector.Container{
				ID:      state.Info.ID,
				Name:    containerName(ns, state.Info),
				Image:   state.Info.Image,
				ImageID: digests[state.Info.Image],
				State:   string(state.Status),
				Status:  string(state.Status),
				Labels:  state.Info.Labels,
			})
		}
	}
	log.Debugf("found %d alive containerd containers", len(cntrs))
	return cntrs, nil
}

// containerName returns the name of a container, preferring the name nerdctl
// stores in a label over the container ID. Containers outside the default
// namespace get their namespace as a prefix.
func containerName(ns string, info containers.Container) string {
	name := info.ID
	if label := info.Labels[NameLabel]; label != "" {
		name = label
	}
	if ns != namespaces.Default {
		name = ns + "/" + name
	}
	return name
}
