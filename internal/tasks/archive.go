package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/metrics"
)

// archive moves each consumed key from the landing area to the archive area.
//
// Each step checks its target first, so a run that stopped partway can be repeated: an archive copy that
// already exists is not copied again, and a landing copy that is already gone is not deleted again.
func (e *TransformEngine) archive(
	ctx context.Context,
	logger *log.Logger,
	keys []string,
	result *TransformResult,
	progress chan<- ProgressUpdate,
) error {
	for i, src := range keys {
		dst := e.layout.ArchiveKey(src)

		archived, err := e.store.Exists(ctx, dst)
		if err != nil {
			return fmt.Errorf("failed to check archive copy of %s: %w", src, err)
		}
		if !archived {
			if err := e.store.Copy(ctx, src, dst); err != nil {
				return fmt.Errorf("failed to archive %s: %w", src, err)
			}
		} else {
			logger.Debug("archive copy already present", "key", dst)
		}

		pending, err := e.store.Exists(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to check landing copy of %s: %w", src, err)
		}
		if pending {
			if err := e.store.Delete(ctx, src); err != nil {
				return fmt.Errorf("failed to remove %s from landing area: %w", src, err)
			}
		}

		result.Archived++
		metrics.ObjectsArchived.Inc()
		e.sendProgress(progress, archiveObjectUpdate(i+1, len(keys), src, dst))
	}
	return nil
}
