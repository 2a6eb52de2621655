package relay

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/shared"
)

// JobStarter starts a named job asynchronously and returns its run ID. Implemented by jobs.Manager.
type JobStarter interface {
	StartJobRun(ctx context.Context, name string) (string, error)
}

// Relay starts the configured job once per notification.
type Relay struct {
	starter JobStarter
	jobName string
	logger  *log.Logger
}

// NewRelay creates a Relay that starts jobName.
func NewRelay(starter JobStarter, jobName string, logger *log.Logger) *Relay {
	return &Relay{starter: starter, jobName: jobName, logger: logger}
}

// JobName returns the name of the job started on each notification.
func (r *Relay) JobName() string { return r.jobName }

// Notify starts one job run for payload.
func (r *Relay) Notify(ctx context.Context, payload []byte) (string, error) {
	if r.jobName == "" {
		return "", fmt.Errorf("%w: job name", shared.ErrMissingConfig)
	}

	key := ObjectKey(payload)
	runID, err := r.starter.StartJobRun(ctx, r.jobName)
	if err != nil {
		r.logger.Error("failed to start job", "job", r.jobName, "key", key, "error", err)
		return "", fmt.Errorf("failed to start %s: %w", r.jobName, err)
	}

	r.logger.Info("job started", "job", r.jobName, "run_id", runID, "key", key)
	return runID, nil
}
