// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"time"

	"github.com/siemens/whaletopo/model"
	"github.com/thediveo/lxkns/log"
)

// RunOption represents options to Run.
type RunOption func(*runner)

// WithMetrics records stage durations and failures in the specified metrics.
func WithMetrics(m *Metrics) RunOption {
	return func(r *runner) {
		r.metrics = m
	}
}

type runner struct {
	metrics *Metrics
}

// Run the specified stages in sequence on the result, returning the result
// after all stages have succeeded. Run checks the context before each stage
// and stops as soon as the context is done.
//
// On the first stage failing, Run returns a [*StageError] and a nil system,
// skipping all remaining stages. Any changes made to the result by stages up
// to the failure are kept, so callers must discard the result they passed in.
func Run(
	ctx context.Context, cfg *model.Config, result *model.System, stages []Stage, opts ...RunOption,
) (*model.System, error) {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	for _, stage := range stages {
		name := stage.Name()
		if err := ctx.Err(); err != nil {
			log.Warnf("analysis cancelled before stage '%s'", name)
			r.metrics.failed(name)
			return nil, &StageError{Stage: name, Err: err}
		}
		log.Debugf("running analysis stage '%s'", name)
		started := time.Now()
		err := stage.Run(ctx, cfg, result)
		r.metrics.observe(name, time.Since(started))
		if err != nil {
			log.Errorf("analysis stage '%s' failed, reason: %s", name, err.Error())
			r.metrics.failed(name)
			return nil, &StageError{Stage: name, Err: err}
		}
	}
	return result, nil
}
