// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package all

import (
	_ "github.com/siemens/whaletopo/inspector/containerd" // inspect containerd
	_ "github.com/siemens/whaletopo/inspector/cri"        // inspect CRI-O and other CRI engines
	_ "github.com/siemens/whaletopo/inspector/moby"       // inspect Docker
	_ "github.com/siemens/whaletopo/inspector/podman"     // inspect podman
)
