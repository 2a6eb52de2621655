// Package jobs runs named batch jobs and records every run.
//
// A [Manager] plays the part of a managed job service: callers start a job by name and get a run ID back,
// while the job executes in the background and its outcome lands in the run store.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/shared"
)

// Func is the body of a job. It receives the run record being executed and reports its outcome counts.
type Func func(ctx context.Context, run *models.JobRun) (models.RunCounts, error)

// RunStore persists job runs. Implemented by repositories.JobRunRepository.
type RunStore interface {
	Create(ctx context.Context, run *models.JobRun) error
	Update(ctx context.Context, run *models.JobRun) error
	Get(ctx context.Context, id string) (*models.JobRun, error)
}

// Manager registers jobs by name and executes their runs.
type Manager struct {
	store  RunStore
	logger *log.Logger

	mu   sync.RWMutex
	jobs map[string]Func

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a Manager recording runs in store.
func NewManager(store RunStore, logger *log.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:  store,
		logger: logger,
		jobs:   make(map[string]Func),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register binds fn to name, replacing any previous binding.
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[name] = fn
}

// Jobs lists the registered job names.
func (m *Manager) Jobs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) lookup(name string) (Func, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fn, ok := m.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, name)
	}
	return fn, nil
}

// StartJobRun records a new run of name and executes it in the background.
//
// Every call starts a new run; overlapping calls are not coalesced.
func (m *Manager) StartJobRun(ctx context.Context, name string) (string, error) {
	fn, err := m.lookup(name)
	if err != nil {
		return "", err
	}

	run := models.NewJobRun(name)
	if err := m.store.Create(ctx, run); err != nil {
		return "", fmt.Errorf("failed to record job run: %w", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.execute(m.ctx, fn, run); err != nil {
			m.logger.Error("job run failed", "job", name, "run_id", run.ID, "error", err)
		}
	}()

	return run.ID, nil
}

// Run records a new run of name and executes it on the calling goroutine.
//
// The returned run carries the final status; the error is the job's own failure.
func (m *Manager) Run(ctx context.Context, name string) (*models.JobRun, error) {
	fn, err := m.lookup(name)
	if err != nil {
		return nil, err
	}

	run := models.NewJobRun(name)
	if err := m.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record job run: %w", err)
	}

	return run, m.execute(ctx, fn, run)
}

// Wait blocks until every background run has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown cancels background runs and waits for them, giving up when ctx ends.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) execute(ctx context.Context, fn Func, run *models.JobRun) error {
	logger := m.logger.With("job", run.JobName, "run_id", run.ID)
	logger.Info("job run started")

	metrics.TrackActiveRun(true)
	defer metrics.TrackActiveRun(false)

	counts, err := fn(ctx, run)
	run.Finish(counts, err)

	metrics.RecordJobRun(run.JobName, string(run.Status), run.Duration())

	// The record must land even when the run was canceled.
	if uerr := m.store.Update(context.WithoutCancel(ctx), run); uerr != nil {
		logger.Error("failed to record job outcome", "error", uerr)
	}

	if err != nil {
		return err
	}

	logger.Info("job run succeeded",
		"objects_read", counts.ObjectsRead,
		"albums", counts.AlbumsWritten,
		"artists", counts.ArtistsWritten,
		"songs", counts.SongsWritten,
		"archived", counts.ObjectsArchived,
		"duration", run.Duration().Round(time.Millisecond),
	)
	return nil
}
