// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package postprocess

import (
	"context"
	"fmt"

	"github.com/siemens/whaletopo/model"
	"github.com/siemens/whaletopo/pipeline"
	"github.com/thediveo/lxkns/log"
	"golang.org/x/exp/slices"
)

// Stage is the final analysis stage reconciling the merged topology: it
// removes stale nodes and references, restores the consistency between
// parents and children, and normalizes runtime attributes.
type Stage struct{}

var _ pipeline.Stage = (*Stage)(nil)

// Name of the stage.
func (s *Stage) Name() string { return "postprocess" }

// Run the post-processing on the result. It fails only if the result is
// structurally invalid on entry, that is, if it doesn't have exactly one
// self-contained root machine node.
func (s *Stage) Run(_ context.Context, cfg *model.Config, result *model.System) error {
	root, err := checkRoot(result)
	if err != nil {
		return err
	}
	if cfg.MissingNodes() == model.MissingPrune {
		pruneMissing(result, root)
	}
	pruneDanglingChildren(result)
	reparentOrphans(result, root)
	reconcileChildren(result, root)
	normalize(result, root)
	return nil
}

// checkRoot returns the root node if the result has exactly one root node,
// which must be its own container.
func checkRoot(result *model.System) (*model.Node, error) {
	var root *model.Node
	for id, node := range result.Topology.Containers.All() {
		if node.Type != model.BlankContainer {
			continue
		}
		if root != nil {
			return nil, fmt.Errorf("%w: multiple root machine nodes '%s' and '%s'",
				model.ErrInvalidTopology, root.ID, id)
		}
		root = node
	}
	if root == nil {
		return nil, fmt.Errorf("%w: missing root machine node", model.ErrInvalidTopology)
	}
	if root.ContainedBy != root.ID {
		return nil, fmt.Errorf("%w: root machine node '%s' contained by '%s'",
			model.ErrInvalidTopology, root.ID, root.ContainedBy)
	}
	return root, nil
}

// pruneMissing removes the container nodes that weren't discovered in the
// current analysis run. Nodes of other types are left alone, as they
// represent topology defined outside the container runtime.
func pruneMissing(result *model.System, root *model.Node) {
	for _, id := range result.Topology.Containers.IDs() {
		node := result.Topology.Containers.Get(id)
		if node == root || node.Type != model.Docker || result.Discovered(id) {
			continue
		}
		log.Infof("removing container node '%s' not seen anymore", id)
		result.Topology.Containers.Delete(id)
	}
}

// pruneDanglingChildren removes children references to non-existing nodes.
func pruneDanglingChildren(result *model.System) {
	nodes := &result.Topology.Containers
	for id, node := range nodes.All() {
		node.Contains = slices.DeleteFunc(node.Contains, func(childid string) bool {
			if nodes.Has(childid) {
				return false
			}
			log.Debugf("removing dangling child '%s' from node '%s'", childid, id)
			return true
		})
	}
}

// reparentOrphans moves nodes beneath the root whose parent doesn't exist, as
// well as non-root nodes claiming to be their own parent. Afterwards, it breaks
// containment cycles not reaching the root.
func reparentOrphans(result *model.System, root *model.Node) {
	nodes := &result.Topology.Containers
	for id, node := range nodes.All() {
		if node == root || (nodes.Has(node.ContainedBy) && node.ContainedBy != id) {
			continue
		}
		log.Debugf("moving orphaned node '%s' from missing parent '%s' beneath root '%s'",
			id, node.ContainedBy, root.ID)
		node.ContainedBy = root.ID
	}
	for id, node := range nodes.All() {
		if reachesRoot(nodes, node, root) {
			continue
		}
		log.Debugf("breaking containment cycle by moving node '%s' beneath root '%s'",
			id, root.ID)
		node.ContainedBy = root.ID
	}
}

// reachesRoot reports whether the root is an ancestor of the specified node,
// or the node itself. All parents must exist.
func reachesRoot(nodes *model.Containers, node *model.Node, root *model.Node) bool {
	for range nodes.Len() {
		if node == root {
			return true
		}
		node = nodes.Get(node.ContainedBy)
	}
	return node == root
}

// reconcileChildren makes the children lists consistent with the parent
// references of the nodes: a parent lists exactly those nodes naming it as
// their parent, each only once. Existing children keep their order, missing
// children are appended in declaration order. The root never lists itself.
func reconcileChildren(result *model.System, root *model.Node) {
	nodes := &result.Topology.Containers
	for id, node := range nodes.All() {
		kept := make([]string, 0, len(node.Contains))
		for _, childid := range node.Contains {
			child := nodes.Get(childid)
			if child == root || child.ContainedBy != id || slices.Contains(kept, childid) {
				continue
			}
			kept = append(kept, childid)
		}
		node.Contains = kept
	}
	for id, node := range nodes.All() {
		if node == root {
			continue
		}
		parent := nodes.Get(node.ContainedBy)
		if !slices.Contains(parent.Contains, id) {
			parent.Contains = append(parent.Contains, id)
		}
	}
}

// normalize the specific bags: there are no nil bags, and nodes without an IP
// address inherit the one of their parent. The root defaults to
// [model.DefaultRootIPAddress].
func normalize(result *model.System, root *model.Node) {
	nodes := &result.Topology.Containers
	for _, node := range nodes.All() {
		if node.Specific == nil {
			node.Specific = model.Specific{}
		}
		if node.Contains == nil {
			node.Contains = []string{}
		}
	}
	if root.Specific.String(model.IPAddressKey) == "" {
		root.Specific[model.IPAddressKey] = model.DefaultRootIPAddress
	}
	for _, node := range nodes.All() {
		ipAddress(nodes, node)
	}
}

// ipAddress returns the IP address of the specified node, inheriting and
// setting it from the node's ancestors if necessary.
func ipAddress(nodes *model.Containers, node *model.Node) string {
	if addr := node.Specific.String(model.IPAddressKey); addr != "" {
		return addr
	}
	if node.ContainedBy == node.ID {
		return ""
	}
	addr := ipAddress(nodes, nodes.Get(node.ContainedBy))
	if addr != "" {
		node.Specific[model.IPAddressKey] = addr
	}
	return addr
}
