// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package cri

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/siemens/whaletopo/inspector"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/lxkns/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	runtime "k8s.io/cri-api/pkg/apis/runtime/v1"
)

// Type identifying CRI engines.
const Type = "k8s.io/cri"

// DefaultAPI is the API endpoint of a system CRI-O daemon.
const DefaultAPI = "unix:///run/crio/crio.sock"

// Well-known labels Kubernetes attaches to its containers.
const (
	PodNamespaceLabel = "io.kubernetes.pod.namespace"
	PodNameLabel      = "io.kubernetes.pod.name"
	ContainerLabel    = "io.kubernetes.container.name"
)

// criVersion is the CRI API version we speak.
const criVersion = "0.1.0"

// versionTimeout limits checking that an API endpoint is actually serving.
const versionTimeout = 5 * time.Second

// Register this CRI inspector engine plugin. This statically ensures that the
// Engine interface is fully implemented.
func init() {
	plugger.Group[inspector.Engine]().Register(
		&Engine{}, plugger.WithPlugin("cri"))
}

// Engine implements the inspector.Engine interface for CRI engines, such as
// CRI-O and containerd's CRI plugin.
type Engine struct{}

// Type returns the type of container engine.
func (e *Engine) Type() string { return Type }

// NewInspector returns an inspector for the CRI engine at the specified API
// endpoint, or at [DefaultAPI] if the endpoint is empty.
func (e *Engine) NewInspector(ctx context.Context, api string) (inspector.Inspector, error) {
	insp, err := New(ctx, api)
	if err != nil {
		return nil, err // avoid returning a typed nil
	}
	return insp, nil
}

// Inspector enumerates the images and running containers of a CRI engine.
type Inspector struct {
	runtime runtime.RuntimeServiceClient
	images  runtime.ImageServiceClient
	conn    io.Closer
}

var _ inspector.Inspector = (*Inspector)(nil)

// New returns an Inspector talking to the CRI API at the specified endpoint,
// such as "unix:///run/containerd/containerd.sock", or at [DefaultAPI] if
// the endpoint is empty. Plain pathnames are taken as unix socket paths. New
// checks that the endpoint is actually served before returning.
func New(ctx context.Context, api string) (*Inspector, error) {
	if api == "" {
		api = DefaultAPI
	}
	if !strings.Contains(api, "://") {
		api = "unix://" + api
	}
	log.Debugf("dialing CRI API endpoint '%s'", api)
	conn, err := grpc.NewClient(api,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	insp := newInspector(
		runtime.NewRuntimeServiceClient(conn), runtime.NewImageServiceClient(conn), conn)
	// gRPC connects lazily, so only an actual call tells us whether there is
	// a CRI engine serving this endpoint.
	versionctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	version, err := insp.runtime.Version(versionctx, &runtime.VersionRequest{Version: criVersion})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debugf("connected to %s %s at %s",
		version.GetRuntimeName(), version.GetRuntimeVersion(), api)
	return insp, nil
}

func newInspector(rt runtime.RuntimeServiceClient, img runtime.ImageServiceClient, conn io.Closer) *Inspector {
	return &Inspector{runtime: rt, images: img, conn: conn}
}

// Close the connection to the CRI API.
func (i *Inspector) Close() error {
	return i.conn.Close()
}

// Images returns the images of the CRI engine.
func (i *Inspector) Images(ctx context.Context) ([]inspector.Image, error) {
	resp, err := i.images.ListImages(ctx, &runtime.ListImagesRequest{})
	if err != nil {
		return nil, err
	}
	imgs := make([]inspector.Image, 0, len(resp.GetImages()))
	for _, img := range resp.GetImages() {
		imgs = append(imgs, inspector.Image{
			ID:          img.GetId(),
			RepoTags:    img.GetRepoTags(),
			RepoDigests: img.GetRepoDigests(),
		})
	}
	log.Debugf("found %d CRI images", len(imgs))
	return imgs, nil
}

// Containers returns the running containers of the CRI engine, with their
// pod's IP address. Containers vanishing while being inspected are skipped.
func (i *Inspector) Containers(ctx context.Context) ([]inspector.Container, error) {
	imgs, err := i.Images(ctx)
	if err != nil {
		return nil, err
	}
	imageIDs := map[string]string{}
	for _, img := range imgs {
		imageIDs[img.ID] = img.ID
		for _, ref := range img.RepoTags {
			imageIDs[ref] = img.ID
		}
		for _, ref := range img.RepoDigests {
			imageIDs[ref] = img.ID
		}
	}

	resp, err := i.runtime.ListContainers(ctx, &runtime.ListContainersRequest{
		Filter: &runtime.ContainerFilter{
			State: &runtime.ContainerStateValue{State: runtime.ContainerState_CONTAINER_RUNNING},
		},
	})
	if err != nil {
		return nil, err
	}
	podIPs := map[string]string{}
	cntrs := make([]inspector.Container, 0, len(resp.GetContainers()))
	for _, c := range resp.GetContainers() {
		cstatus, err := i.runtime.ContainerStatus(ctx,
			&runtime.ContainerStatusRequest{ContainerId: c.GetId()})
		if err != nil {
			if status.Code(err) == codes.NotFound {
				log.Debugf("CRI container %s vanished", c.GetId())
				continue
			}
			return nil, err
		}
		ip, ok := podIPs[c.GetPodSandboxId()]
		if !ok {
			ip, err = i.podIP(ctx, c.GetPodSandboxId())
			if err != nil {
				return nil, err
			}
			podIPs[c.GetPodSandboxId()] = ip
		}
		var started time.Time
		if ns := cstatus.GetStatus().GetStartedAt(); ns != 0 {
			started = time.Unix(0, ns).UTC()
		}
		imageRef := c.GetImageRef()
		imageID := imageIDs[imageRef]
		if imageID == "" {
			imageID = imageIDs[c.GetImage().GetImage()]
		}
		cntrs = append(cntrs, inspector.Container{
			ID:        c.GetId(),
			Name:      containerName(c),
			Image:     c.GetImage().GetImage(),
			ImageID:   imageID,
			State:     "running",
			Status:    "running",
			IPAddress: ip,
			StartedAt: started,
			Labels:    c.GetLabels(),
		})
	}
	log.Debugf("found %d running CRI containers", len(cntrs))
	return cntrs, nil
}

// podIP returns the IP address of the specified pod, or an empty string if
// the pod has vanished in the meantime.
func (i *Inspector) podIP(ctx context.Context, podID string) (string, error) {
	if podID == "" {
		return "", nil
	}
	resp, err := i.runtime.PodSandboxStatus(ctx,
		&runtime.PodSandboxStatusRequest{PodSandboxId: podID})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", err
	}
	return resp.GetStatus().GetNetwork().GetIp(), nil
}

// containerName returns "namespace/pod/container" for containers managed by
// Kubernetes, otherwise the container name from its metadata, falling back to
// the container ID.
func containerName(c *runtime.Container) string {
	labels := c.GetLabels()
	name := labels[ContainerLabel]
	if name == "" {
		name = c.GetMetadata().GetName()
	}
	if name == "" {
		return c.GetId()
	}
	if pod := labels[PodNameLabel]; pod != "" {
		name = pod + "/" + name
		if ns := labels[PodNamespaceLabel]; ns != "" {
			name = ns + "/" + name
		}
	}
	return name
}
