// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package postprocess

import (
	"context"
	"fmt"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/siemens/whaletopo/internal/test"
	"github.com/siemens/whaletopo/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// system returns a system with a root machine node "10" and the specified
// additional nodes, in order.
func system(nodes ...*model.Node) *model.System {
	s := &model.System{
		ContainerDefinitions: []*model.ContainerDefinition{model.MachineDefinition()},
	}
	s.Topology.Containers.Put(&model.Node{
		ID:                    "10",
		ContainerDefinitionID: model.MachineDefinitionID,
		ContainedBy:           "10",
		Type:                  model.BlankContainer,
	})
	for _, node := range nodes {
		s.Topology.Containers.Put(node)
	}
	return s
}

func container(id, parent string, children ...string) *model.Node {
	return &model.Node{
		ID:          id,
		ContainedBy: parent,
		Contains:    children,
		Type:        model.Docker,
	}
}

// consistent checks that parents and children agree, there are no dangling
// references, and every node has an IP address.
func consistent(s *model.System) error {
	nodes := &s.Topology.Containers
	for id, node := range nodes.All() {
		parent := nodes.Get(node.ContainedBy)
		if parent == nil {
			return fmt.Errorf("node %s has missing parent %s", id, node.ContainedBy)
		}
		if node.Type != model.BlankContainer {
			found := 0
			for _, childid := range parent.Contains {
				if childid == id {
					found++
				}
			}
			if found != 1 {
				return fmt.Errorf("node %s listed %d times by parent %s", id, found, parent.ID)
			}
		}
		for _, childid := range node.Contains {
			child := nodes.Get(childid)
			if child == nil {
				return fmt.Errorf("node %s has dangling child %s", id, childid)
			}
			if child.ContainedBy != id {
				return fmt.Errorf("node %s lists child %s contained by %s", id, childid, child.ContainedBy)
			}
		}
		if node.Specific.String(model.IPAddressKey) == "" {
			return fmt.Errorf("node %s lacks IP address", id)
		}
	}
	return nil
}

var _ = Describe("post-processing", func() {

	BeforeEach(test.LogToGinkgo)

	It("has a name", func() {
		Expect((&Stage{}).Name()).To(Equal("postprocess"))
	})

	DescribeTable("rejecting structurally invalid results",
		func(ctx context.Context, s *model.System, msg string) {
			Expect((&Stage{}).Run(ctx, &model.Config{}, s)).To(And(
				MatchError(model.ErrInvalidTopology),
				MatchError(ContainSubstring(msg))))
		},
		Entry("no root", func() *model.System {
			s := &model.System{}
			s.Topology.Containers.Put(container("a", "a"))
			return s
		}(), "missing root machine node"),
		Entry("multiple roots", system(&model.Node{
			ID: "42", ContainedBy: "42", Type: model.BlankContainer,
		}), "multiple root machine nodes '10' and '42'"),
		Entry("root contained elsewhere", func() *model.System {
			s := system(container("a", "10"))
			s.Root().ContainedBy = "a"
			return s
		}(), "root machine node '10' contained by 'a'"),
	)

	It("prunes undiscovered container nodes", func(ctx context.Context) {
		s := system(
			container("a", "10"),
			container("b", "10"),
			&model.Node{ID: "gw", ContainedBy: "10", Type: "gateway"},
		)
		s.Root().Contains = []string{"a", "b", "gw"}
		s.MarkDiscovered("a")
		Expect((&Stage{}).Run(ctx, &model.Config{}, s)).To(Succeed())
		Expect(s.Topology.Containers.IDs()).To(Equal([]string{"10", "a", "gw"}))
		Expect(s.Root().Contains).To(Equal([]string{"a", "gw"}))
		Expect(test.LogOutput()).To(ContainSubstring("removing container node 'b' not seen anymore"))
	})

	It("keeps undiscovered container nodes on request", func(ctx context.Context) {
		s := system(container("a", "10"), container("b", "10"))
		s.Root().Contains = []string{"a", "b"}
		s.MarkDiscovered("a")
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		Expect(s.Topology.Containers.IDs()).To(Equal([]string{"10", "a", "b"}))
		Expect(s.Root().Contains).To(Equal([]string{"a", "b"}))
	})

	It("removes dangling children and reparents orphans", func(ctx context.Context) {
		s := system(
			container("a", "10", "ghost", "b"),
			container("b", "a"),
			container("c", "vanished"),
			container("d", "d"),
		)
		s.Root().Contains = []string{"a", "ghost"}
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		nodes := &s.Topology.Containers
		Expect(nodes.Get("a").Contains).To(Equal([]string{"b"}))
		Expect(nodes.Get("c").ContainedBy).To(Equal("10"))
		Expect(nodes.Get("d").ContainedBy).To(Equal("10"))
		Expect(s.Root().Contains).To(Equal([]string{"a", "c", "d"}))
		Expect(consistent(s)).To(Succeed())
	})

	It("reconciles children lists with parent references", func(ctx context.Context) {
		s := system(
			container("a", "10", "b", "b", "10", "c"),
			container("b", "a"),
			container("c", "10"),
		)
		s.Root().Contains = []string{"10", "c", "a"}
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		nodes := &s.Topology.Containers
		Expect(nodes.Get("a").Contains).To(Equal([]string{"b"}))
		Expect(s.Root().Contains).To(Equal([]string{"c", "a"}))
		Expect(nodes.Get("b").Contains).NotTo(BeNil())
		Expect(consistent(s)).To(Succeed())
	})

	It("inherits IP addresses from parents", func(ctx context.Context) {
		a := container("a", "10")
		a.Specific = model.Specific{model.IPAddressKey: "172.17.0.2"}
		s := system(a, container("b", "a"), container("c", "10"))
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		nodes := &s.Topology.Containers
		Expect(s.Root().Specific).To(HaveKeyWithValue(model.IPAddressKey, model.DefaultRootIPAddress))
		Expect(nodes.Get("a").Specific).To(HaveKeyWithValue(model.IPAddressKey, "172.17.0.2"))
		Expect(nodes.Get("b").Specific).To(HaveKeyWithValue(model.IPAddressKey, "172.17.0.2"))
		Expect(nodes.Get("c").Specific).To(HaveKeyWithValue(model.IPAddressKey, model.DefaultRootIPAddress))
	})

	It("keeps an existing root IP address", func(ctx context.Context) {
		s := system(container("a", "10"))
		s.Root().Specific = model.Specific{model.IPAddressKey: "192.168.1.10"}
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		Expect(s.Topology.Containers.Get("a").Specific).
			To(HaveKeyWithValue(model.IPAddressKey, "192.168.1.10"))
	})

	It("breaks containment cycles", func(ctx context.Context) {
		s := system(container("a", "b", "b"), container("b", "a", "a"))
		Expect((&Stage{}).Run(ctx, &model.Config{Missing: model.MissingKeep}, s)).To(Succeed())
		nodes := &s.Topology.Containers
		Expect(nodes.Get("a").ContainedBy).To(Equal("10"))
		Expect(nodes.Get("a").Contains).To(Equal([]string{"b"}))
		Expect(nodes.Get("b").Contains).To(BeEmpty())
		Expect(s.Root().Contains).To(Equal([]string{"a"}))
		Expect(consistent(s)).To(Succeed())
	})

	It("always leaves a consistent topology", func(ctx context.Context) {
		ids := []string{"10", "a", "b", "c", "d", "e", "ghost"}
		anyid := gen.IntRange(0, len(ids)-1).Map(func(idx int) string { return ids[idx] })
		type shape struct {
			parents  []string
			children [][]string
			seen     []bool
		}
		genShape := gopter.CombineGens(
			gen.SliceOfN(5, anyid),
			gen.SliceOfN(6, gen.SliceOf(anyid)),
			gen.SliceOfN(5, gen.Bool()),
		).Map(func(vals []any) shape {
			return shape{
				parents:  vals[0].([]string),
				children: vals[1].([][]string),
				seen:     vals[2].([]bool),
			}
		})

		properties := gopter.NewProperties(nil)
		properties.Property("consistent after post-processing", prop.ForAll(
			func(sh shape) string {
				var nodes []*model.Node
				for idx, id := range ids[1:6] {
					nodes = append(nodes, container(id, sh.parents[idx], sh.children[idx+1]...))
				}
				s := system(nodes...)
				s.Root().Contains = sh.children[0]
				for idx, id := range ids[1:6] {
					if sh.seen[idx] {
						s.MarkDiscovered(id)
					}
				}
				if err := (&Stage{}).Run(ctx, &model.Config{}, s); err != nil {
					return err.Error()
				}
				if err := consistent(s); err != nil {
					return err.Error()
				}
				for idx, id := range ids[1:6] {
					if s.Topology.Containers.Has(id) != sh.seen[idx] {
						return fmt.Sprintf("node %s pruning mismatch", id)
					}
				}
				return ""
			},
			genShape,
		))
		Expect(properties.Run(gopter.NewFormatedReporter(false, 80, GinkgoWriter))).To(BeTrue())
	})

})
