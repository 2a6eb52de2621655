package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/jobs"
	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/desertthunder/spotlake/internal/storage"
	"github.com/desertthunder/spotlake/internal/transform"
)

// TransformResult summarizes one transform run.
type TransformResult struct {
	RunID       string   `json:"run_id"`
	ObjectsRead int      `json:"objects_read"`
	Undecodable int      `json:"undecodable"`
	Rows        int      `json:"rows"`
	Albums      int      `json:"albums"`
	Artists     int      `json:"artists"`
	Songs       int      `json:"songs"`
	Archived    int      `json:"archived"`
	Files       []string `json:"files"`
}

// Counts converts the result into run record counters.
func (r *TransformResult) Counts() models.RunCounts {
	if r == nil {
		return models.RunCounts{}
	}
	return models.RunCounts{
		ObjectsRead:     r.ObjectsRead,
		AlbumsWritten:   r.Albums,
		ArtistsWritten:  r.Artists,
		SongsWritten:    r.Songs,
		ObjectsArchived: r.Archived,
	}
}

// Leaser grants exclusive ownership of a storage prefix. Implemented by repositories.LeaseRepository.
type Leaser interface {
	Acquire(ctx context.Context, resource, owner string, ttl time.Duration) (*models.Lease, error)
	Release(ctx context.Context, resource, owner string) error
}

// TransformEngine turns the landing area into appended dataset parts and archives what it consumed.
type TransformEngine struct {
	store    storage.Store
	layout   storage.Layout
	leases   Leaser
	leaseTTL time.Duration
	logger   *log.Logger
}

// NewTransformEngine creates a TransformEngine. A nil leases disables run-ownership locking.
func NewTransformEngine(store storage.Store, layout storage.Layout, leases Leaser, leaseTTL time.Duration, logger *log.Logger) *TransformEngine {
	if leaseTTL <= 0 {
		leaseTTL = 30 * time.Minute
	}
	return &TransformEngine{
		store:    store,
		layout:   layout,
		leases:   leases,
		leaseTTL: leaseTTL,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TransformEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Job adapts the engine to a [jobs.Func], using the run ID as the lease owner and part file name.
func (e *TransformEngine) Job(progress chan<- ProgressUpdate) jobs.Func {
	return func(ctx context.Context, run *models.JobRun) (models.RunCounts, error) {
		result, err := e.Run(ctx, run.ID, progress)
		return result.Counts(), err
	}
}

// Run executes one transform over everything currently in the landing area.
//
// On error the returned result holds whatever was completed before the failure.
func (e *TransformEngine) Run(ctx context.Context, runID string, progress chan<- ProgressUpdate) (*TransformResult, error) {
	logger := e.logger.With("run_id", runID)
	result := &TransformResult{RunID: runID, Files: []string{}}

	if e.leases != nil {
		e.sendProgress(progress, acquireLeaseUpdate(e.layout.Landing))
		if _, err := e.leases.Acquire(ctx, e.layout.Landing, runID, e.leaseTTL); err != nil {
			return result, err
		}
		defer func() {
			if err := e.leases.Release(context.WithoutCancel(ctx), e.layout.Landing, runID); err != nil {
				logger.Warn("failed to release lease", "resource", e.layout.Landing, "error", err)
			}
		}()
	}

	objects, err := e.store.List(ctx, e.layout.Landing)
	if err != nil {
		return result, fmt.Errorf("failed to list landing area: %w", err)
	}
	e.sendProgress(progress, listObjectsUpdate(e.layout.Landing, len(objects)))

	if len(objects) == 0 {
		logger.Info("landing area is empty", "prefix", e.layout.Landing)
		e.sendProgress(progress, completeUpdate(result))
		return result, nil
	}

	records, consumed, err := e.read(ctx, logger, objects, result, progress)
	if err != nil {
		return result, err
	}

	rows := transform.Flatten(records)
	result.Rows = len(rows)
	e.sendProgress(progress, flattenUpdate(len(records), len(rows)))

	tables := transform.Extract(rows)
	if err := e.write(ctx, logger, runID, tables, result, progress); err != nil {
		return result, err
	}

	if err := e.archive(ctx, logger, consumed, result, progress); err != nil {
		return result, err
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// read fetches and decodes every listed object.
//
// Objects that do not decode contribute no rows. Objects removed since listing are skipped.
// consumed holds the JSON keys that were read and should be archived.
func (e *TransformEngine) read(
	ctx context.Context,
	logger *log.Logger,
	objects []storage.ObjectInfo,
	result *TransformResult,
	progress chan<- ProgressUpdate,
) (records []transform.Record, consumed []string, err error) {
	for i, obj := range objects {
		e.sendProgress(progress, readObjectUpdate(i+1, len(objects), obj.Key))

		data, err := e.store.Get(ctx, obj.Key)
		if errors.Is(err, shared.ErrObjectNotFound) {
			logger.Warn("object disappeared before it was read", "key", obj.Key)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", obj.Key, err)
		}

		result.ObjectsRead++
		if storage.IsJSON(obj.Key) {
			consumed = append(consumed, obj.Key)
		}

		record, err := transform.Decode(obj.Key, data)
		if err != nil {
			result.Undecodable++
			metrics.ObjectsUndecodable.Inc()
			logger.Warn("skipping undecodable object", "key", obj.Key, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, consumed, nil
}

// write appends one part per non-empty dataset.
func (e *TransformEngine) write(
	ctx context.Context,
	logger *log.Logger,
	runID string,
	tables transform.Tables,
	result *TransformResult,
	progress chan<- ProgressUpdate,
) error {
	type part struct {
		dataset storage.Dataset
		rows    int
		encode  func() ([]byte, error)
		count   *int
	}

	parts := []part{
		{storage.AlbumData, len(tables.Albums), func() ([]byte, error) { return transform.EncodeAlbums(tables.Albums) }, &result.Albums},
		{storage.ArtistData, len(tables.Artists), func() ([]byte, error) { return transform.EncodeArtists(tables.Artists) }, &result.Artists},
		{storage.SongData, len(tables.Songs), func() ([]byte, error) { return transform.EncodeSongs(tables.Songs) }, &result.Songs},
	}

	for i, p := range parts {
		if p.rows == 0 {
			e.sendProgress(progress, skipDatasetUpdate(i+1, len(parts), p.dataset))
			continue
		}

		data, err := p.encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", p.dataset, err)
		}

		key := e.layout.PartKey(p.dataset, runID)
		if err := e.store.Put(ctx, key, data, "application/vnd.apache.parquet"); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.dataset, err)
		}

		*p.count = p.rows
		result.Files = append(result.Files, key)
		metrics.RecordRowsWritten(string(p.dataset), p.rows)
		logger.Info("dataset part written", "dataset", p.dataset, "rows", p.rows, "key", key)
		e.sendProgress(progress, writeDatasetUpdate(i+1, len(parts), p.dataset, p.rows, key))
	}
	return nil
}
