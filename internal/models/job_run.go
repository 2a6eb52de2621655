package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [JobRun].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunRunning, RunSucceeded, RunFailed:
		return true
	}
	return false
}

// RunCounts are the outcome counters recorded on a finished run.
type RunCounts struct {
	ObjectsRead     int `json:"objects_read"`
	AlbumsWritten   int `json:"albums_written"`
	ArtistsWritten  int `json:"artists_written"`
	SongsWritten    int `json:"songs_written"`
	ObjectsArchived int `json:"objects_archived"`
}

// JobRun is one execution of a named job.
type JobRun struct {
	ID           string     `json:"id"`
	Sequence     int        `json:"sequence"`
	JobName      string     `json:"job_name"`
	Status       RunStatus  `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	RunCounts
}

// NewJobRun creates a running job record started now.
func NewJobRun(jobName string) *JobRun {
	return &JobRun{
		JobName:   jobName,
		Status:    RunRunning,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (r *JobRun) Key() string { return r.ID }

// Validate checks the required fields.
func (r *JobRun) Validate() error {
	if r.JobName == "" {
		return fmt.Errorf("job name is required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Status != RunRunning && r.CompletedAt == nil {
		return fmt.Errorf("completed_at is required for status %s", r.Status)
	}
	return nil
}

// Finish marks the run as completed, failed when err is non-nil.
func (r *JobRun) Finish(counts RunCounts, err error) {
	now := time.Now().UTC().Truncate(time.Second)
	r.CompletedAt = &now
	r.RunCounts = counts
	if err != nil {
		r.Status = RunFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunSucceeded
}

// Duration returns the elapsed run time, zero while running.
func (r *JobRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Lease records run ownership of a storage resource until ExpiresAt.
type Lease struct {
	Resource   string    `json:"resource"`
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (l *Lease) Key() string { return l.Resource }

// Validate checks the required fields.
func (l *Lease) Validate() error {
	if l.Resource == "" || l.Owner == "" {
		return fmt.Errorf("lease requires a resource and an owner")
	}
	if !l.ExpiresAt.After(l.AcquiredAt) {
		return fmt.Errorf("lease must expire after it is acquired")
	}
	return nil
}

// Expired reports whether the lease has lapsed at t.
func (l *Lease) Expired(t time.Time) bool {
	return !t.Before(l.ExpiresAt)
}
