// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package test

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
)

// LogToGinkgo sends any log output, including debug messages, to Ginkgo, so
// that the latter can show it to us when a test fails. If a test succeeds we
// won't get bothered by any log output. Additionally, it wraps the current
// GinkgoWriter so that it supports the [fmt.Stringer] interface, thus giving
// tests access to the log output accumulated during an individual test, see
// also [LogOutput].
//
// Usage:
//
//	BeforeEach(test.LogToGinkgo)
func LogToGinkgo() {
	std := logrus.StandardLogger()
	stdout := std.Out
	stdformatter := std.Formatter
	stdlevel := std.GetLevel()
	gw := GinkgoWriter
	GinkgoWriter = newBuffer(GinkgoWriter)
	std.SetOutput(GinkgoWriter)
	std.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})
	std.SetLevel(logrus.DebugLevel)
	DeferCleanup(func() {
		GinkgoWriter = gw
		std.SetOutput(stdout)
		std.SetFormatter(stdformatter)
		std.SetLevel(stdlevel)
	})
}

// LogOutput returns the log output accumulated so far during the current test
// when [LogToGinkgo] is in effect, and an empty string otherwise.
func LogOutput() string {
	if s, ok := GinkgoWriter.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// buffer is “-race”-safe, can be queried for its contents, and wraps a
// GinkgoWriter.
type buffer struct {
	GinkgoWriterInterface
	mu sync.Mutex
	b  bytes.Buffer
}

func newBuffer(gw GinkgoWriterInterface) GinkgoWriterInterface {
	return &buffer{
		GinkgoWriterInterface: gw,
	}
}

func (b *buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.GinkgoWriterInterface.Write(p)
	return b.b.Write(p)
}

func (b *buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}
