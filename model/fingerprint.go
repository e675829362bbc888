// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a hash over the canonical JSON encoding of the
// specified system. Systems differing in any detail, including the
// declaration order of their nodes, have different fingerprints (well, with
// overwhelming probability). A nil system has the fingerprint zero.
func Fingerprint(s *System) uint64 {
	if s == nil {
		return 0
	}
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}
