// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"

	"github.com/siemens/whaletopo/model"
)

// Stage is an individual step of a topology analysis, working on the shared
// analysis result.
type Stage interface {
	// Name returns the name of the stage for logging, metrics and errors.
	Name() string
	// Run the stage on the analysis result.
	Run(ctx context.Context, cfg *model.Config, result *model.System) error
}

// StageFunc adapts a plain function into a named [Stage].
func StageFunc(name string, fn func(ctx context.Context, cfg *model.Config, result *model.System) error) Stage {
	return &funcStage{name: name, fn: fn}
}

type funcStage struct {
	name string
	fn   func(ctx context.Context, cfg *model.Config, result *model.System) error
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Run(ctx context.Context, cfg *model.Config, result *model.System) error {
	return s.fn(ctx, cfg, result)
}

// StageError reports the failure of a particular stage.
type StageError struct {
	Stage string // name of failed stage.
	Err   error  // cause of failure.
}

func (e *StageError) Error() string {
	return fmt.Sprintf("analysis stage '%s' failed: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }
