// Package extract pulls a playlist's raw track listing from the upstream API and lands it in object storage.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/services"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/desertthunder/spotlake/internal/storage"
)

// Notifier announces newly landed objects. Implemented by relay.Publisher.
type Notifier interface {
	PublishObjectCreated(ctx context.Context, key string, size int64) error
}

// Extractor writes one raw object per run into the landing area.
type Extractor struct {
	source     services.PlaylistSource
	store      storage.Store
	layout     storage.Layout
	playlistID string
	notifier   Notifier
	now        func() time.Time
	logger     *log.Logger
}

// NewExtractor creates an Extractor for playlistID. notifier may be nil when the store emits its own notifications.
func NewExtractor(
	source services.PlaylistSource,
	store storage.Store,
	layout storage.Layout,
	playlistID string,
	notifier Notifier,
	logger *log.Logger,
) *Extractor {
	return &Extractor{
		source:     source,
		store:      store,
		layout:     layout,
		playlistID: playlistID,
		notifier:   notifier,
		now:        time.Now,
		logger:     logger,
	}
}

// Run fetches the playlist once and stores the response under a timestamped landing key, which it returns.
func (e *Extractor) Run(ctx context.Context) (key string, err error) {
	defer func() { metrics.RecordExtraction(err) }()

	if e.playlistID == "" {
		return "", fmt.Errorf("%w: extract.playlist_id", shared.ErrMissingConfig)
	}

	e.logger.Info("fetching playlist", "service", e.source.Name(), "playlist_id", e.playlistID)
	data, err := e.source.PlaylistTracks(ctx, e.playlistID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch playlist %s: %w", e.playlistID, err)
	}

	key = e.layout.RawKey(e.now())
	if err := e.store.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	e.logger.Info("raw object stored", "bucket", e.store.Bucket(), "key", key, "bytes", len(data))

	if e.notifier != nil {
		if err := e.notifier.PublishObjectCreated(ctx, key, int64(len(data))); err != nil {
			return key, fmt.Errorf("stored %s but failed to notify: %w", key, err)
		}
		e.logger.Debug("notification published", "key", key)
	}

	return key, nil
}
