// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package model

import "errors"

// ErrInvalidTopology signals a structurally invalid system or topology, such
// as a missing root node or mismatching container keys.
var ErrInvalidTopology = errors.New("invalid topology")

// ErrInvalidConfig signals an analysis configuration that didn't validate.
var ErrInvalidConfig = errors.New("invalid configuration")
