// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

// whaletopo analyzes the container topology of the local container engine,
// reconciling it with a prior topology snapshot.
package main

import (
	"os"

	_ "github.com/thediveo/lxkns/log/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
