// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Containers maps node ids to nodes, remembering the order in which the nodes
// were declared or inserted. The zero value is an empty mapping ready to use.
//
// The declaration order matters: the root machine node is the first node of
// type [BlankContainer] in declaration order. Go maps don't keep any order, so
// the JSON and YAML codecs of Containers retain the order of the object keys
// as found in the documents.
type Containers struct {
	order []string
	nodes map[string]*Node
}

// Len returns the number of nodes.
func (c *Containers) Len() int { return len(c.order) }

// Get returns the node with the specified id, or nil.
func (c *Containers) Get(id string) *Node {
	return c.nodes[id]
}

// Has reports whether a node with the specified id exists.
func (c *Containers) Has(id string) bool {
	_, ok := c.nodes[id]
	return ok
}

// Put inserts the specified node, replacing any existing node with the same
// id while keeping the existing node's position.
func (c *Containers) Put(node *Node) {
	if c.nodes == nil {
		c.nodes = map[string]*Node{}
	}
	if _, ok := c.nodes[node.ID]; !ok {
		c.order = append(c.order, node.ID)
	}
	c.nodes[node.ID] = node
}

// Delete removes the node with the specified id, reporting whether there was
// such a node.
func (c *Containers) Delete(id string) bool {
	if _, ok := c.nodes[id]; !ok {
		return false
	}
	delete(c.nodes, id)
	c.order = slices.DeleteFunc(c.order, func(nodeid string) bool { return nodeid == id })
	return true
}

// IDs returns the node ids in declaration order.
func (c *Containers) IDs() []string {
	return slices.Clone(c.order)
}

// All iterates over the node ids and nodes in declaration order. Nodes must
// not be added or deleted while iterating; use [Containers.IDs] instead.
func (c *Containers) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, id := range c.order {
			if !yield(id, c.nodes[id]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (c *Containers) Clone() Containers {
	clone := Containers{}
	for _, node := range c.All() {
		clone.Put(node.Clone())
	}
	return clone
}

// MarshalJSON encodes the nodes as a JSON object keyed by node id, in
// declaration order.
func (c Containers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, id := range c.order {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(c.nodes[id])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keyed by node id, keeping the key order.
func (c *Containers) UnmarshalJSON(data []byte) error {
	*c = Containers{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil // null
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: containers must be an object, got %v", ErrInvalidTopology, tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string) // object keys are always strings
		var node Node
		if err := dec.Decode(&node); err != nil {
			return fmt.Errorf("container %q: %w", key, err)
		}
		if err := c.putKeyed(key, &node); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

// MarshalYAML encodes the nodes as a YAML mapping keyed by node id, in
// declaration order.
func (c Containers) MarshalYAML() (any, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, id := range c.order {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id}
		value := &yaml.Node{}
		if err := value.Encode(c.nodes[id]); err != nil {
			return nil, err
		}
		mapping.Content = append(mapping.Content, key, value)
	}
	return mapping, nil
}

// UnmarshalYAML decodes a YAML mapping keyed by node id, keeping the key order.
func (c *Containers) UnmarshalYAML(value *yaml.Node) error {
	*c = Containers{}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: containers must be a mapping (line %d)",
			ErrInvalidTopology, value.Line)
	}
	for idx := 0; idx+1 < len(value.Content); idx += 2 {
		key := value.Content[idx].Value
		var node Node
		if err := value.Content[idx+1].Decode(&node); err != nil {
			return fmt.Errorf("container %q: %w", key, err)
		}
		if err := c.putKeyed(key, &node); err != nil {
			return err
		}
	}
	return nil
}

// putKeyed adds a decoded node under its document key, defaulting the node's
// id to the key.
func (c *Containers) putKeyed(key string, node *Node) error {
	if node.ID == "" {
		node.ID = key
	} else if node.ID != key {
		return fmt.Errorf("%w: container key %q does not match node id %q",
			ErrInvalidTopology, key, node.ID)
	}
	if c.Has(key) {
		return fmt.Errorf("%w: duplicate container id %q", ErrInvalidTopology, key)
	}
	c.Put(node)
	return nil
}
