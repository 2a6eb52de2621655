package tasks

import (
	"fmt"

	"github.com/desertthunder/spotlake/internal/storage"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	AcquireLease Phase = iota
	ListObjects
	ReadObjects
	FlattenRows
	WriteDataset
	ArchiveObjects
	Complete
)

func (p Phase) String() string {
	switch p {
	case AcquireLease:
		return "acquire_lease"
	case ListObjects:
		return "list_objects"
	case ReadObjects:
		return "read_objects"
	case FlattenRows:
		return "flatten_rows"
	case WriteDataset:
		return "write_dataset"
	case ArchiveObjects:
		return "archive_objects"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func acquireLeaseUpdate(resource string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireLease,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Acquiring lease on %s...", resource),
	}
}

func listObjectsUpdate(prefix string, found int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListObjects,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d objects under %s", found, prefix),
	}
}

func readObjectUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadObjects,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s", step, total, key),
	}
}

func flattenUpdate(records, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FlattenRows,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Flattened %d records into %d rows", records, rows),
	}
}

func writeDatasetUpdate(step, total int, ds storage.Dataset, rows int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDataset,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d rows → %s", step, total, ds, rows, key),
	}
}

func skipDatasetUpdate(step, total int, ds storage.Dataset) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDataset,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: no rows, skipped", step, total, ds),
	}
}

func archiveObjectUpdate(step, total int, src, dst string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ArchiveObjects,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s → %s", step, total, src, dst),
	}
}

func completeUpdate(result *TransformResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Complete,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Transform complete: %d objects, %d albums, %d artists, %d songs, %d archived",
			result.ObjectsRead, result.Albums, result.Artists, result.Songs, result.Archived),
		Data: result,
	}
}
