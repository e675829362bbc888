// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/siemens/whaletopo/inspector"
	"github.com/siemens/whaletopo/model"
	"github.com/siemens/whaletopo/pipeline"
	"github.com/thediveo/lxkns/log"
)

// Keys of image-related attributes in specific bags.
const (
	ImageKey       = "image"
	ImageIDKey     = "imageId"
	RepoTagsKey    = "repoTags"
	RepoDigestsKey = "repoDigests"
	CreatedKey     = "created"
)

// ImageDiscovery is the analysis stage adding a container definition for each
// image not yet known. It never removes definitions.
type ImageDiscovery struct {
	Inspector inspector.Inspector
}

var _ pipeline.Stage = (*ImageDiscovery)(nil)

// Name of the stage.
func (s *ImageDiscovery) Name() string { return "images" }

// Run the image discovery.
func (s *ImageDiscovery) Run(ctx context.Context, _ *model.Config, result *model.System) error {
	images, err := s.Inspector.Images(ctx)
	if err != nil {
		return fmt.Errorf("cannot list images, reason: %w", err)
	}
	added := 0
	for _, img := range images {
		if result.AddDefinition(imageDefinition(img)) {
			added++
		}
	}
	log.Infof("discovered %d images, %d new container definitions", len(images), added)
	return nil
}

// imageDefinition returns the container definition for the specified image.
func imageDefinition(img inspector.Image) *model.ContainerDefinition {
	key := img.ID
	name := shortID(img.ID)
	ref := img.ID
	switch {
	case len(img.RepoTags) > 0:
		ref = img.RepoTags[0]
		name = repository(ref)
	case len(img.RepoDigests) > 0:
		ref = img.RepoDigests[0]
		name = repository(ref)
	}
	if key == "" {
		key = ref
	}
	specific := model.Specific{
		ImageKey:   ref,
		ImageIDKey: img.ID,
	}
	if len(img.RepoTags) > 0 {
		specific[RepoTagsKey] = img.RepoTags
	}
	if len(img.RepoDigests) > 0 {
		specific[RepoDigestsKey] = img.RepoDigests
	}
	if !img.Created.IsZero() {
		specific[CreatedKey] = img.Created.UTC().Format(time.RFC3339)
	}
	return &model.ContainerDefinition{
		Name:     name,
		Type:     model.Docker,
		Specific: specific,
		ID:       DefinitionID(key),
	}
}
