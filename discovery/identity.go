// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package discovery

import (
	"strings"

	"github.com/google/uuid"
)

// Namespaces of the name-based (SHA1) UUIDs identifying image-derived
// container definitions and container nodes.
var (
	definitionNamespace = uuid.MustParse("0b5e5b1c-8a3f-4b8e-9d61-2f0c6b3e7a10")
	nodeNamespace       = uuid.MustParse("5d2a9c47-1e6b-4f0a-8c3d-7b94e1f26c85")
)

// DefinitionID returns the id of the container definition for the image with
// the specified content-addressable ID (or reference, if the ID is unknown).
func DefinitionID(imageID string) string {
	return uuid.NewSHA1(definitionNamespace, []byte(imageID)).String()
}

// NodeID returns the id of the topology node for the container with the
// specified name.
func NodeID(containerName string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(containerName)).String()
}

// repository returns the repository part of an image reference, that is,
// without any tag or digest. Registry ports are kept.
func repository(ref string) string {
	if at := strings.Index(ref, "@"); at >= 0 {
		ref = ref[:at]
	}
	if colon := strings.LastIndex(ref, ":"); colon > strings.LastIndex(ref, "/") {
		ref = ref[:colon]
	}
	return ref
}

// shortID returns the abbreviated form of a content-addressable image ID.
func shortID(id string) string {
	if _, hex, ok := strings.Cut(id, ":"); ok {
		id = hex
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
