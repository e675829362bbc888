// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package model

import "maps"

// DefinitionType identifies the kind of a container definition, and thus also
// of the topology nodes instantiated from it.
type DefinitionType string

const (
	// BlankContainer is the reserved type of the root “machine” node.
	BlankContainer DefinitionType = "blank-container"
	// Docker is the type of definitions derived from container images and of
	// the nodes representing containers.
	Docker DefinitionType = "docker"
)

// Well-known identities of the built-in machine definition and the default
// root node.
const (
	MachineDefinitionID   = "85d99b2c-06d0-5485-9501-4d4ed429799c"
	MachineDefinitionName = "Machine"
	DefaultRootID         = "10"
)

// IPAddressKey is the key in a node's [Specific] bag carrying its IP address.
const IPAddressKey = "ipaddress"

// DefaultRootIPAddress is the IP address attributed to the root machine node
// unless the prior topology says otherwise.
const DefaultRootIPAddress = "localhost"

// Specific is an open-ended bag of type-dependent attributes.
type Specific map[string]any

// Clone returns a shallow copy of the bag; a nil bag clones to an empty one.
func (s Specific) Clone() Specific {
	if s == nil {
		return Specific{}
	}
	return maps.Clone(s)
}

// String returns the string value for key, if present and a string.
func (s Specific) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// ContainerDefinition is a template describing a class of entities, such as
// the “Machine” or a particular container image.
type ContainerDefinition struct {
	Name     string         `json:"name" yaml:"name"`
	Type     DefinitionType `json:"type" yaml:"type"`
	Specific Specific       `json:"specific" yaml:"specific"`
	ID       string         `json:"id" yaml:"id"`
}

// Clone returns a copy of the definition that doesn't share its specific bag.
func (d *ContainerDefinition) Clone() *ContainerDefinition {
	c := *d
	c.Specific = d.Specific.Clone()
	return &c
}

// MachineDefinition returns a fresh copy of the built-in machine definition
// the root node is instantiated from.
func MachineDefinition() *ContainerDefinition {
	return &ContainerDefinition{
		Name:     MachineDefinitionName,
		Type:     BlankContainer,
		Specific: Specific{},
		ID:       MachineDefinitionID,
	}
}

// Node is an individual entity instantiated in a topology.
type Node struct {
	ID                    string         `json:"id" yaml:"id"`
	ContainerDefinitionID string         `json:"containerDefinitionId" yaml:"containerDefinitionId"`
	ContainedBy           string         `json:"containedBy" yaml:"containedBy"`
	Contains              []string       `json:"contains" yaml:"contains"`
	Type                  DefinitionType `json:"type" yaml:"type"`
	Specific              Specific       `json:"specific" yaml:"specific"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Contains = append([]string{}, n.Contains...)
	c.Specific = n.Specific.Clone()
	return &c
}

// Topology is the graph of nodes and their containment relations.
type Topology struct {
	Containers Containers `json:"containers" yaml:"containers"`
}

// System is a topology snapshot together with the definitions its nodes are
// instantiated from. The same shape serves as prior snapshot and as analysis
// result.
type System struct {
	Name                 string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace            string                 `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	ID                   string                 `json:"id,omitempty" yaml:"id,omitempty"`
	ContainerDefinitions []*ContainerDefinition `json:"containerDefinitions" yaml:"containerDefinitions"`
	Topology             Topology               `json:"topology" yaml:"topology"`

	discovered map[string]struct{} // nodes observed during the current analysis run.
}

// Definition returns the container definition with the specified id, or nil.
func (s *System) Definition(id string) *ContainerDefinition {
	if s == nil {
		return nil
	}
	for _, cdef := range s.ContainerDefinitions {
		if cdef.ID == id {
			return cdef
		}
	}
	return nil
}

// AddDefinition appends the definition unless a definition with the same id
// is already present, reporting whether it was added.
func (s *System) AddDefinition(cdef *ContainerDefinition) bool {
	if s.Definition(cdef.ID) != nil {
		return false
	}
	s.ContainerDefinitions = append(s.ContainerDefinitions, cdef)
	return true
}

// MarkDiscovered records that the node with the specified id has been
// observed in the runtime during the current analysis run.
func (s *System) MarkDiscovered(id string) {
	if s.discovered == nil {
		s.discovered = map[string]struct{}{}
	}
	s.discovered[id] = struct{}{}
}

// Discovered reports whether the node with the specified id has been observed
// during the current analysis run.
func (s *System) Discovered(id string) bool {
	_, ok := s.discovered[id]
	return ok
}

// Root returns the first node of type [BlankContainer] in declaration order,
// or nil.
func (s *System) Root() *Node {
	if s == nil {
		return nil
	}
	for _, node := range s.Topology.Containers.All() {
		if node.Type == BlankContainer {
			return node
		}
	}
	return nil
}

// RootID returns the id of the root machine node of the specified system, or
// [DefaultRootID] if there is no system or it lacks a root node.
func RootID(s *System) string {
	if root := s.Root(); root != nil {
		return root.ID
	}
	return DefaultRootID
}
