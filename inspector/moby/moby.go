// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package moby

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/siemens/whaletopo/inspector"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/lxkns/log"
	"golang.org/x/sync/errgroup"
)

// Type identifying Docker engines.
const Type = "docker.com"

// pingTimeout limits checking that an API endpoint is actually serving.
const pingTimeout = 5 * time.Second

// Register this Docker inspector engine plugin. This statically ensures that
// the Engine interface is fully implemented.
func init() {
	plugger.Group[inspector.Engine]().Register(
		&Engine{}, plugger.WithPlugin("docker"))
}

// Engine implements the inspector.Engine interface for Docker.
type Engine struct{}

// Type returns the type of container engine.
func (e *Engine) Type() string { return Type }

// NewInspector returns an inspector for the Docker engine at the specified
// API endpoint, or as configured by the usual DOCKER_HOST et al. environment
// variables if the endpoint is empty.
func (e *Engine) NewInspector(ctx context.Context, api string) (inspector.Inspector, error) {
	insp, err := New(ctx, api)
	if err != nil {
		return nil, err // avoid returning a typed nil
	}
	return insp, nil
}

// apiClient is the subset of the Docker client API we need.
type apiClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, container string) (container.InspectResponse, error)
	Close() error
}

// Inspector enumerates images and containers of a Docker (or
// Docker API-compatible) container engine.
type Inspector struct {
	client     apiClient
	numworkers int // max number of parallel container inspections.
}

var _ inspector.Inspector = (*Inspector)(nil)

// Option represents options to New when creating a new Docker inspector.
type Option func(*Inspector)

// WithWorkers sets the maximum number of parallel container inspections while
// enumerating containers. A maximum number of zero or less is taken as
// GOMAXPROCS instead.
func WithWorkers(num int) Option {
	return func(i *Inspector) {
		i.numworkers = num
	}
}

// New returns an Inspector talking to the Docker API at the specified
// endpoint, such as "unix:///run/docker.sock". If the endpoint is empty, the
// DOCKER_HOST et al. environment variables apply. New checks that the endpoint
// is actually served before returning.
func New(ctx context.Context, api string, opts ...Option) (*Inspector, error) {
	clientopts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if api != "" {
		clientopts = append(clientopts, client.WithHost(api))
	}
	cli, err := client.NewClientWithOpts(clientopts...)
	if err != nil {
		return nil, err
	}
	// As Docker's go client will accept any API pathname we throw at it and
	// throw up only when actually trying to communicate with the engine, we
	// need to check that we actually can talk with the daemon.
	pingctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := cli.Ping(pingctx); err != nil {
		_ = cli.Close()
		return nil, err
	}
	log.Debugf("connected to Docker API at %s", cli.DaemonHost())
	return newInspector(cli, opts...), nil
}

func newInspector(cli apiClient, opts ...Option) *Inspector {
	i := &Inspector{client: cli}
	for _, opt := range opts {
		opt(i)
	}
	if i.numworkers <= 0 {
		i.numworkers = runtime.GOMAXPROCS(0)
	}
	return i
}

// Close the connection to the Docker API.
func (i *Inspector) Close() error {
	return i.client.Close()
}

// Images returns the (non-intermediate) images of the Docker engine.
func (i *Inspector) Images(ctx context.Context) ([]inspector.Image, error) {
	summaries, err := i.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, err
	}
	images := make([]inspector.Image, 0, len(summaries))
	for _, summary := range summaries {
		img := inspector.Image{
			ID:          summary.ID,
			RepoTags:    withoutNone(summary.RepoTags),
			RepoDigests: withoutNone(summary.RepoDigests),
		}
		if summary.Created > 0 {
			img.Created = time.Unix(summary.Created, 0).UTC()
		}
		images = append(images, img)
	}
	log.Debugf("found %d Docker images", len(images))
	return images, nil
}

// Containers returns the alive containers of the Docker engine. As the
// container list lacks some details, the individual containers are
// additionally inspected in parallel. Containers vanishing in the meantime
// are skipped.
func (i *Inspector) Containers(ctx context.Context) ([]inspector.Container, error) {
	summaries, err := i.client.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, err
	}
	containers := make([]inspector.Container, len(summaries))
	vanished := make([]bool, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.numworkers)
	for idx, summary := range summaries {
		containers[idx] = containerFromSummary(summary)
		g.Go(func() error {
			details, err := i.client.ContainerInspect(gctx, summary.ID)
			if err != nil {
				if client.IsErrNotFound(err) {
					log.Debugf("container %s vanished while inspecting", containers[idx].Name)
					vanished[idx] = true
					return nil
				}
				return err
			}
			addDetails(&containers[idx], details)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	alive := containers[:0]
	for idx := range containers {
		if !vanished[idx] {
			alive = append(alive, containers[idx])
		}
	}
	log.Debugf("found %d alive Docker containers", len(alive))
	return alive, nil
}

// containerFromSummary returns the container information available from a
// container list entry.
func containerFromSummary(summary container.Summary) inspector.Container {
	name := summary.ID
	if len(name) > 12 {
		name = name[:12]
	}
	if len(summary.Names) > 0 {
		name = strings.TrimPrefix(summary.Names[0], "/")
	}
	return inspector.Container{
		ID:        summary.ID,
		Name:      name,
		Image:     summary.Image,
		ImageID:   summary.ImageID,
		State:     string(summary.State),
		Status:    summary.Status,
		IPAddress: ipAddress(summary),
		Labels:    summary.Labels,
	}
}

// ipAddress returns the first IP address of the container, with the networks
// taken in order of their names. It returns an empty address when the
// container has no IP address of its own, such as with host networking.
func ipAddress(summary container.Summary) string {
	if summary.NetworkSettings == nil {
		return ""
	}
	netnames := make([]string, 0, len(summary.NetworkSettings.Networks))
	for netname := range summary.NetworkSettings.Networks {
		netnames = append(netnames, netname)
	}
	slices.Sort(netnames)
	for _, netname := range netnames {
		endpoint := summary.NetworkSettings.Networks[netname]
		if endpoint != nil && endpoint.IPAddress != "" {
			return endpoint.IPAddress
		}
	}
	return ""
}

// addDetails adds the container details only available from inspection.
func addDetails(c *inspector.Container, details container.InspectResponse) {
	if details.Config != nil {
		c.Hostname = details.Config.Hostname
	}
	if details.ContainerJSONBase == nil {
		return
	}
	c.RestartCount = details.RestartCount
	if details.State == nil {
		return
	}
	if started, err := time.Parse(time.RFC3339Nano, details.State.StartedAt); err == nil {
		c.StartedAt = started
	}
}

// withoutNone returns the image references without Docker's "<none>"
// placeholders of untagged images.
func withoutNone(refs []string) []string {
	var tagged []string
	for _, ref := range refs {
		if strings.HasPrefix(ref, "<none>") {
			continue
		}
		tagged = append(tagged, ref)
	}
	return tagged
}
