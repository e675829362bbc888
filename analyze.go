// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package whaletopo

import (
	"context"
	"fmt"

	"github.com/siemens/whaletopo/discovery"
	"github.com/siemens/whaletopo/filter"
	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/model"
	"github.com/siemens/whaletopo/pipeline"
	"github.com/siemens/whaletopo/postprocess"
	"github.com/thediveo/lxkns/log"

	_ "github.com/siemens/whaletopo/inspector/all" // pull in inspector engine plugins
)

// DefaultEngine is the name of the inspector engine plugin used when neither
// an inspector nor an engine has been specified.
const DefaultEngine = "docker"

// Analyze discovers the container topology of the local container runtime,
// merging it into the prior system snapshot, and returns the resulting
// system. The prior snapshot may be nil and is never modified; the docker
// filters of the configuration are updated in place, see [filter.Derive]. A
// nil configuration is taken as an empty configuration.
//
// Analyze returns either a result or an error, never both. Stage failures
// are reported as [*pipeline.StageError].
func Analyze(ctx context.Context, cfg *model.Config, prior *model.System, opts ...Option) (*model.System, error) {
	a := &analysis{
		engine: DefaultEngine,
	}
	for _, opt := range opts {
		opt(a)
	}
	if cfg == nil {
		cfg = &model.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter.Derive(cfg, prior)
	log.Debugf("docker filters: %v", cfg.DockerFilters)

	result := scaffold(cfg, prior)
	log.Debugf("root machine node '%s'", result.Root().ID)

	stages := a.stages
	if stages == nil {
		insp := a.inspector
		if insp == nil {
			var err error
			insp, err = inspector.New(ctx, a.engine, a.host)
			if err != nil {
				return nil, fmt.Errorf("cannot inspect container runtime, reason: %w", err)
			}
			defer func() {
				if err := insp.Close(); err != nil {
					log.Warnf("cannot close inspector, reason: %s", err.Error())
				}
			}()
		}
		stages = DefaultStages(insp)
	}

	var runopts []pipeline.RunOption
	if a.metrics != nil {
		runopts = append(runopts, pipeline.WithMetrics(a.metrics))
	}
	result, err := pipeline.Run(ctx, cfg, result, stages, runopts...)
	if err != nil {
		return nil, err
	}
	if prior != nil && model.Fingerprint(prior) == model.Fingerprint(result) {
		log.Infof("topology of system '%s' unchanged", result.Name)
	} else {
		log.Infof("topology of system '%s' changed, %d nodes, %d container definitions",
			result.Name, result.Topology.Containers.Len(), len(result.ContainerDefinitions))
	}
	return result, nil
}

// DefaultStages returns the analysis stages discovering images and containers
// using the specified inspector, followed by post-processing.
func DefaultStages(insp inspector.Inspector) []pipeline.Stage {
	return []pipeline.Stage{
		&discovery.ImageDiscovery{Inspector: insp},
		&discovery.ContainerDiscovery{Inspector: insp},
		&postprocess.Stage{},
	}
}

// scaffold returns a fresh result to be filled by the analysis stages. It
// carries over deep copies of the prior system's definitions and nodes, and
// seeds the root machine node, keeping the root id of the prior system.
func scaffold(cfg *model.Config, prior *model.System) *model.System {
	result := &model.System{
		Name:                 cfg.Name,
		Namespace:            cfg.Namespace,
		ID:                   cfg.SystemID,
		ContainerDefinitions: []*model.ContainerDefinition{model.MachineDefinition()},
	}
	rootid := model.RootID(prior)
	root := &model.Node{
		ID:                    rootid,
		ContainerDefinitionID: model.MachineDefinitionID,
		ContainedBy:           rootid,
		Contains:              []string{},
		Type:                  model.BlankContainer,
		Specific:              model.Specific{model.IPAddressKey: model.DefaultRootIPAddress},
	}
	result.Topology.Containers.Put(root)
	if prior == nil {
		return result
	}

	if prior.Name != "" {
		result.Name = prior.Name
	}
	if prior.Namespace != "" {
		result.Namespace = prior.Namespace
	}
	if prior.ID != "" {
		result.ID = prior.ID
	}
	for _, cdef := range prior.ContainerDefinitions {
		if cdef == nil {
			continue
		}
		result.AddDefinition(cdef.Clone())
	}
	priorRoot := prior.Root()
	for id, node := range prior.Topology.Containers.All() {
		if node == priorRoot {
			for key, value := range node.Specific.Clone() {
				root.Specific[key] = value
			}
			root.Contains = append(root.Contains, node.Contains...)
			continue
		}
		if node.Type == model.BlankContainer {
			log.Warnf("dropping additional machine node '%s'", id)
			continue
		}
		result.Topology.Containers.Put(node.Clone())
	}
	return result
}
