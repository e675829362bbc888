// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/siemens/whaletopo/filter"
	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/model"
	"github.com/siemens/whaletopo/pipeline"
	"github.com/thediveo/lxkns/log"
	"golang.org/x/exp/slices"
)

// Keys of container-related runtime attributes in specific bags.
const (
	NameKey         = "name"
	ContainerIDKey  = "containerId"
	StateKey        = "state"
	StatusKey       = "status"
	LabelsKey       = "labels"
	HostnameKey     = "hostname"
	StartedAtKey    = "startedAt"
	RestartCountKey = "restartCount"
)

// ContainerDiscovery is the analysis stage creating or updating a topology
// node for each alive container that survives the docker filters. The nodes
// become direct children of the root machine node.
type ContainerDiscovery struct {
	Inspector inspector.Inspector
}

var _ pipeline.Stage = (*ContainerDiscovery)(nil)

// Name of the stage.
func (s *ContainerDiscovery) Name() string { return "containers" }

// Run the container discovery. The result must already contain its root
// machine node, as well as the definitions of the images discovered so far.
func (s *ContainerDiscovery) Run(ctx context.Context, cfg *model.Config, result *model.System) error {
	root := result.Root()
	if root == nil {
		return fmt.Errorf("%w: missing root machine node", model.ErrInvalidTopology)
	}
	containers, err := s.Inspector.Containers(ctx)
	if err != nil {
		return fmt.Errorf("cannot list containers, reason: %w", err)
	}
	matcher := filter.NewMatcher(cfg, result.Name)
	merged := 0
	for _, cntr := range containers {
		if !matcher.Keep(cntr.Name) {
			log.Debugf("filtered out container '%s'", cntr.Name)
			continue
		}
		merge(result, root, cntr)
		merged++
	}
	log.Infof("discovered %d containers, %d after filtering", len(containers), merged)
	return nil
}

// merge the specified container into the result, either creating a new node
// or updating the existing node of the same identity.
func merge(result *model.System, root *model.Node, cntr inspector.Container) {
	nodes := &result.Topology.Containers
	id := NodeID(cntr.Name)
	node := nodes.Get(id)
	if node == nil {
		node = &model.Node{
			ID:       id,
			Contains: []string{},
			Specific: model.Specific{},
		}
		nodes.Put(node)
	} else if node.ContainedBy != root.ID {
		// The flat containment model moves containers previously placed
		// elsewhere directly beneath the root.
		if parent := nodes.Get(node.ContainedBy); parent != nil {
			parent.Contains = slices.DeleteFunc(parent.Contains,
				func(childid string) bool { return childid == id })
		}
	}
	node.Type = model.Docker
	node.ContainerDefinitionID = containerDefinitionID(result, cntr)
	node.ContainedBy = root.ID
	if node.Specific == nil {
		node.Specific = model.Specific{}
	}
	updateSpecific(node.Specific, cntr)
	if !slices.Contains(root.Contains, id) {
		root.Contains = append(root.Contains, id)
	}
	result.MarkDiscovered(id)
}

// containerDefinitionID returns the id of the container definition for the
// container's image, adding a definition if the image hasn't been discovered,
// such as when an image got removed after starting the container.
func containerDefinitionID(result *model.System, cntr inspector.Container) string {
	img := inspector.Image{ID: cntr.ImageID}
	if cntr.Image != "" && !strings.HasPrefix(cntr.Image, "sha256:") {
		img.RepoTags = []string{cntr.Image}
	} else if img.ID == "" {
		img.ID = cntr.Image
	}
	cdef := imageDefinition(img)
	if result.AddDefinition(cdef) {
		log.Debugf("added container definition '%s' for undiscovered image of container '%s'",
			cdef.Name, cntr.Name)
	}
	return cdef.ID
}

// updateSpecific overwrites the runtime attributes of a container node,
// leaving any other attributes alone.
func updateSpecific(specific model.Specific, cntr inspector.Container) {
	specific[NameKey] = cntr.Name
	specific[ContainerIDKey] = cntr.ID
	specific[ImageKey] = cntr.Image
	specific[StateKey] = cntr.State
	specific[StatusKey] = cntr.Status
	specific[RestartCountKey] = cntr.RestartCount
	setOrDelete(specific, model.IPAddressKey, cntr.IPAddress)
	setOrDelete(specific, HostnameKey, cntr.Hostname)
	if cntr.StartedAt.IsZero() {
		delete(specific, StartedAtKey)
	} else {
		specific[StartedAtKey] = cntr.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	if len(cntr.Labels) == 0 {
		delete(specific, LabelsKey)
	} else {
		specific[LabelsKey] = cntr.Labels
	}
}

func setOrDelete(specific model.Specific, key string, value string) {
	if value == "" {
		delete(specific, key)
		return
	}
	specific[key] = value
}
