// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/internal/test"
	"github.com/siemens/whaletopo/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scaffold returns a result with just a root machine node.
func scaffold() *model.System {
	result := &model.System{
		ContainerDefinitions: []*model.ContainerDefinition{model.MachineDefinition()},
	}
	result.Topology.Containers.Put(&model.Node{
		ID:                    model.DefaultRootID,
		ContainerDefinitionID: model.MachineDefinitionID,
		ContainedBy:           model.DefaultRootID,
		Contains:              []string{},
		Type:                  model.BlankContainer,
		Specific:              model.Specific{model.IPAddressKey: model.DefaultRootIPAddress},
	})
	return result
}

var _ = Describe("discovery stages", func() {

	BeforeEach(test.LogToGinkgo)

	Context("images", func() {

		It("adds definitions for new images only", func(ctx context.Context) {
			created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			insp := &test.Inspector{ImageList: []inspector.Image{
				{ID: "sha256:1111", RepoTags: []string{"nginx:latest", "nginx:1.27"}, Created: created},
				{ID: "sha256:2222", RepoDigests: []string{"redis@sha256:abcd"}},
				{ID: "sha256:3333333333333333"},
			}}
			result := scaffold()
			existing := &model.ContainerDefinition{ID: DefinitionID("sha256:2222"), Name: "keep-me", Type: model.Docker}
			result.AddDefinition(existing)

			stage := &ImageDiscovery{Inspector: insp}
			Expect(stage.Name()).To(Equal("images"))
			Expect(stage.Run(ctx, &model.Config{}, result)).To(Succeed())
			Expect(result.ContainerDefinitions).To(HaveLen(4))
			Expect(result.ContainerDefinitions[0].ID).To(Equal(model.MachineDefinitionID))
			Expect(result.ContainerDefinitions[1]).To(BeIdenticalTo(existing))
			Expect(*result.Definition(DefinitionID("sha256:1111"))).To(And(
				HaveField("Name", "nginx"),
				HaveField("Type", model.Docker),
				HaveField("Specific", And(
					HaveKeyWithValue(ImageKey, "nginx:latest"),
					HaveKeyWithValue(ImageIDKey, "sha256:1111"),
					HaveKeyWithValue(RepoTagsKey, ConsistOf("nginx:latest", "nginx:1.27")),
					HaveKeyWithValue(CreatedKey, "2026-01-02T03:04:05Z"),
					Not(HaveKey(RepoDigestsKey)))),
			))
			Expect(result.Definition(DefinitionID("sha256:3333333333333333")).Name).To(Equal("333333333333"))

			By("running again")
			Expect(stage.Run(ctx, &model.Config{}, result)).To(Succeed())
			Expect(result.ContainerDefinitions).To(HaveLen(4))
		})

		It("reports inspector failures", func(ctx context.Context) {
			insp := &test.Inspector{ImagesErr: errors.New("D'OH!")}
			Expect((&ImageDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, scaffold())).
				To(MatchError(ContainSubstring("cannot list images, reason: D'OH!")))
		})

	})

	Context("containers", func() {

		It("needs a root", func(ctx context.Context) {
			insp := test.Nginx("web")
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, &model.System{})).
				To(MatchError(model.ErrInvalidTopology))
			Expect(insp.ContainerCalls).To(BeZero())
		})

		It("reports inspector failures", func(ctx context.Context) {
			insp := &test.Inspector{ContainersErr: errors.New("D'OH!")}
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, scaffold())).
				To(MatchError(ContainSubstring("cannot list containers, reason: D'OH!")))
		})

		It("creates nodes beneath the root", func(ctx context.Context) {
			insp := test.Nginx("sys1-web")
			result := scaffold()
			Expect((&ImageDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, result)).To(Succeed())
			stage := &ContainerDiscovery{Inspector: insp}
			Expect(stage.Name()).To(Equal("containers"))
			Expect(stage.Run(ctx, &model.Config{}, result)).To(Succeed())

			id := NodeID("sys1-web")
			Expect(result.Topology.Containers.IDs()).To(Equal([]string{model.DefaultRootID, id}))
			Expect(result.Root().Contains).To(Equal([]string{id}))
			Expect(result.Discovered(id)).To(BeTrue())
			Expect(result.ContainerDefinitions).To(HaveLen(2))
			node := result.Topology.Containers.Get(id)
			Expect(*node).To(And(
				HaveField("Type", model.Docker),
				HaveField("ContainedBy", model.DefaultRootID),
				HaveField("ContainerDefinitionID", DefinitionID(insp.ContainerList[0].ImageID)),
				HaveField("Contains", BeEmpty()),
				HaveField("Specific", And(
					HaveKeyWithValue(NameKey, "sys1-web"),
					HaveKeyWithValue(ContainerIDKey, insp.ContainerList[0].ID),
					HaveKeyWithValue(StateKey, "running"),
					HaveKeyWithValue(model.IPAddressKey, "172.17.0.2"),
					Not(HaveKey(StartedAtKey)))),
			))

			By("running again")
			Expect(stage.Run(ctx, &model.Config{}, result)).To(Succeed())
			Expect(result.Topology.Containers.Len()).To(Equal(2))
			Expect(result.Root().Contains).To(Equal([]string{id}))
		})

		It("filters containers", func(ctx context.Context) {
			insp := &test.Inspector{ContainerList: []inspector.Container{
				{Name: "foobar", ImageID: "sha256:1111"},
				{Name: "sys1-web", ImageID: "sha256:1111"},
			}}
			result := scaffold()
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx,
				&model.Config{DockerFilters: []string{"foo"}}, result)).To(Succeed())
			Expect(result.Topology.Containers.Has(NodeID("foobar"))).To(BeFalse())
			Expect(result.Topology.Containers.Has(NodeID("sys1-web"))).To(BeTrue())

			result = scaffold()
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx,
				&model.Config{DockerFilters: []string{"foo"}, FilterPolicy: model.FilterInclude}, result)).To(Succeed())
			Expect(result.Topology.Containers.Has(NodeID("foobar"))).To(BeTrue())
			Expect(result.Topology.Containers.Has(NodeID("sys1-web"))).To(BeFalse())
		})

		It("never filters out the system's own containers", func(ctx context.Context) {
			insp := &test.Inspector{ContainerList: []inspector.Container{
				{Name: "foobar", ImageID: "sha256:1111"},
				{Name: "sys1-web", ImageID: "sha256:1111"},
			}}
			result := scaffold()
			result.Name = "sys1"
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx,
				&model.Config{DockerFilters: []string{"foo", "sys1"}}, result)).To(Succeed())
			Expect(result.Topology.Containers.Has(NodeID("foobar"))).To(BeFalse())
			Expect(result.Topology.Containers.Has(NodeID("sys1-web"))).To(BeTrue())
		})

		It("synthesizes definitions for undiscovered images", func(ctx context.Context) {
			insp := &test.Inspector{ContainerList: []inspector.Container{
				{Name: "a", Image: "busybox:1.36", ImageID: "sha256:4444"},
				{Name: "b", Image: "sha256:5555"},
			}}
			result := scaffold()
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, result)).To(Succeed())
			Expect(result.Definition(DefinitionID("sha256:4444")).Name).To(Equal("busybox"))
			Expect(result.Definition(DefinitionID("sha256:5555")).Name).To(Equal("5555"))
			Expect(result.Topology.Containers.Get(NodeID("b")).ContainerDefinitionID).To(
				Equal(DefinitionID("sha256:5555")))
		})

		It("updates existing nodes in place", func(ctx context.Context) {
			started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			result := scaffold()
			id := NodeID("web")
			result.Topology.Containers.Put(&model.Node{
				ID:          "group",
				ContainedBy: model.DefaultRootID,
				Contains:    []string{id},
				Type:        "group",
			})
			result.Topology.Containers.Put(&model.Node{
				ID:          id,
				ContainedBy: "group",
				Contains:    []string{},
				Type:        model.Docker,
				Specific: model.Specific{
					"custom":           "keep",
					model.IPAddressKey: "10.0.0.1",
					HostnameKey:        "stale",
				},
			})
			result.Root().Contains = []string{"group"}

			insp := &test.Inspector{ContainerList: []inspector.Container{{
				Name:      "web",
				ImageID:   "sha256:1111",
				StartedAt: started,
				Labels:    map[string]string{"foo": "bar"},
			}}}
			Expect((&ContainerDiscovery{Inspector: insp}).Run(ctx, &model.Config{}, result)).To(Succeed())
			Expect(result.Topology.Containers.IDs()).To(Equal([]string{model.DefaultRootID, "group", id}))
			Expect(result.Topology.Containers.Get("group").Contains).To(BeEmpty())
			Expect(result.Root().Contains).To(Equal([]string{"group", id}))
			node := result.Topology.Containers.Get(id)
			Expect(node.ContainedBy).To(Equal(model.DefaultRootID))
			Expect(node.Specific).To(And(
				HaveKeyWithValue("custom", "keep"),
				HaveKeyWithValue(StartedAtKey, "2026-01-02T03:04:05Z"),
				HaveKeyWithValue(LabelsKey, HaveKeyWithValue("foo", "bar")),
				Not(HaveKey(model.IPAddressKey)),
				Not(HaveKey(HostnameKey))))
		})

	})

})
