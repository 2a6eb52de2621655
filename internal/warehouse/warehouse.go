// Package warehouse audits the appended Parquet datasets with DuckDB.
//
// Parts are downloaded from the store into a scratch directory and queried with read_parquet. The audit only
// reports on the data; it never rewrites parts.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/storage"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/spf13/afero"
)

// keyColumns names the natural key of each dataset.
var keyColumns = map[storage.Dataset]string{
	storage.AlbumData:  "album_id",
	storage.ArtistData: "artist_id",
	storage.SongData:   "song_id",
}

// DatasetReport summarizes one dataset across all of its parts.
//
// Duplicates counts rows beyond the first for each non-null key, which accumulate when several runs see the
// same entity. Rows with a null key are counted in NullKeys and never as duplicates.
type DatasetReport struct {
	Dataset      storage.Dataset `json:"dataset"`
	KeyColumn    string          `json:"key_column"`
	Files        int             `json:"files"`
	Bytes        int64           `json:"bytes"`
	Rows         int64           `json:"rows"`
	DistinctKeys int64           `json:"distinct_keys"`
	NullKeys     int64           `json:"null_keys"`
	Duplicates   int64           `json:"duplicates"`
}

// Auditor reads dataset parts from a store.
type Auditor struct {
	store  storage.Store
	layout storage.Layout
	fs     afero.Fs
	logger *log.Logger
}

// NewAuditor creates an Auditor that stages parts on the local filesystem.
func NewAuditor(store storage.Store, layout storage.Layout, logger *log.Logger) *Auditor {
	return &Auditor{store: store, layout: layout, fs: afero.NewOsFs(), logger: logger}
}

// Audit reports every dataset in [storage.Datasets] order.
func (a *Auditor) Audit(ctx context.Context) ([]DatasetReport, error) {
	dir, err := afero.TempDir(a.fs, "", "spotlake-audit-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer a.fs.RemoveAll(dir)

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	reports := make([]DatasetReport, 0, len(keyColumns))
	for _, ds := range storage.Datasets() {
		report, err := a.auditDataset(ctx, db, dir, ds)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (a *Auditor) auditDataset(ctx context.Context, db *sql.DB, dir string, ds storage.Dataset) (DatasetReport, error) {
	report := DatasetReport{Dataset: ds, KeyColumn: keyColumns[ds]}

	parts, err := a.stage(ctx, dir, ds)
	if err != nil {
		return report, err
	}
	report.Files = len(parts)
	for _, p := range parts {
		report.Bytes += p.Size
	}
	if len(parts) == 0 {
		a.logger.Debug("dataset has no parts", "dataset", ds)
		return report, nil
	}

	query := fmt.Sprintf(
		`SELECT count(*), count(%[1]s), count(DISTINCT %[1]s) FROM read_parquet(%[2]s)`,
		report.KeyColumn, quote(filepath.Join(dir, string(ds), "*.parquet")),
	)
	var keyed int64
	if err := db.QueryRowContext(ctx, query).Scan(&report.Rows, &keyed, &report.DistinctKeys); err != nil {
		return report, fmt.Errorf("failed to query %s: %w", ds, err)
	}
	report.NullKeys = report.Rows - keyed
	report.Duplicates = keyed - report.DistinctKeys

	a.logger.Info("dataset audited", "dataset", ds, "files", report.Files, "rows", report.Rows, "duplicates", report.Duplicates)
	return report, nil
}

// stage downloads every part of ds into dir/<ds>/.
func (a *Auditor) stage(ctx context.Context, dir string, ds storage.Dataset) ([]storage.ObjectInfo, error) {
	objects, err := a.store.List(ctx, a.layout.DatasetPrefix(ds))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", ds, err)
	}

	target := filepath.Join(dir, string(ds))
	if err := a.fs.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", target, err)
	}

	var parts []storage.ObjectInfo
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".parquet") {
			continue
		}
		data, err := a.store.Get(ctx, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		name := filepath.Join(target, filepath.Base(obj.Key))
		if err := afero.WriteFile(a.fs, name, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", obj.Key, err)
		}
		parts = append(parts, obj)
	}
	return parts, nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
