// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"

	"github.com/siemens/whaletopo/discovery"
	"github.com/siemens/whaletopo/model"

	g "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

// HaveNodeNameID succeeds if ACTUAL is either a model.Node or *model.Node
// with the specified ID or container name. Alternatively of a name/ID string,
// a GomegaMatcher can also be specified for matching the name or ID, such as
// ContainSubstring and MatchRegexp.
func HaveNodeNameID(nameorid any) types.GomegaMatcher {
	nameoridMatcher := stringMatcher("nameorid", nameorid)
	return g.SatisfyAny(
		g.WithTransform(func(actual any) (string, error) {
			node, err := asNode("HaveNodeNameID", actual)
			if err != nil {
				return "", err
			}
			return node.ID, nil
		}, nameoridMatcher),
		g.WithTransform(func(actual any) (string, error) {
			node, err := asNode("HaveNodeNameID", actual)
			if err != nil {
				return "", err
			}
			return node.Specific.String(discovery.NameKey), nil
		}, nameoridMatcher),
	)
}

// BeContainedBy succeeds if ACTUAL is either a model.Node or *model.Node
// contained by the node with the specified ID, or matching the specified
// GomegaMatcher.
func BeContainedBy(parentid any) types.GomegaMatcher {
	parentidMatcher := stringMatcher("parentid", parentid)
	return g.WithTransform(func(actual any) (string, error) {
		node, err := asNode("BeContainedBy", actual)
		if err != nil {
			return "", err
		}
		return node.ContainedBy, nil
	}, parentidMatcher)
}

// HaveIPAddress succeeds if ACTUAL is either a model.Node or *model.Node with
// the specified IP address in its specific attributes.
func HaveIPAddress(addr any) types.GomegaMatcher {
	addrMatcher := stringMatcher("addr", addr)
	return g.WithTransform(func(actual any) (string, error) {
		node, err := asNode("HaveIPAddress", actual)
		if err != nil {
			return "", err
		}
		return node.Specific.String(model.IPAddressKey), nil
	}, addrMatcher)
}

func stringMatcher(argname string, expected any) types.GomegaMatcher {
	switch expected := expected.(type) {
	case string:
		return g.Equal(expected)
	case types.GomegaMatcher:
		return expected
	}
	panic(argname + " argument must be string or GomegaMatcher")
}

func asNode(matchername string, actual any) (*model.Node, error) {
	switch node := actual.(type) {
	case *model.Node:
		if node != nil {
			return node, nil
		}
	case model.Node:
		return &node, nil
	}
	return nil, fmt.Errorf("%s expects a model.Node or *model.Node, but got %T", matchername, actual)
}
