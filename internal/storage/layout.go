package storage

import (
	"path"
	"strings"
	"time"

	"github.com/desertthunder/spotlake/internal/shared"
)

// Dataset names one of the columnar output tables.
type Dataset string

const (
	AlbumData  Dataset = "album_data"
	ArtistData Dataset = "artist_data"
	SongData   Dataset = "songs_data"
)

// Datasets lists the output tables in write order.
func Datasets() []Dataset {
	return []Dataset{AlbumData, ArtistData, SongData}
}

// RawTimeLayout formats the generation timestamp embedded in raw object names.
const RawTimeLayout = "2006-01-02 15:04:05.000000"

// Layout holds the bucket prefixes for the landing area, the archive area and the outputs.
//
// Every prefix ends with "/".
type Layout struct {
	Landing string
	Archive string
	Output  string
}

// NewLayout reads the prefixes from cfg.
func NewLayout(cfg shared.StorageConfig) Layout {
	return Layout{Landing: cfg.LandingPrefix, Archive: cfg.ArchivePrefix, Output: cfg.OutputPrefix}
}

// RawKey names the landing object for an extraction generated at t.
func (l Layout) RawKey(t time.Time) string {
	return l.Landing + "spotify_raw_" + t.Format(RawTimeLayout) + ".json"
}

// ArchiveKey maps a landing key to its archive key, keeping only the base name.
func (l Layout) ArchiveKey(key string) string {
	return l.Archive + path.Base(key)
}

// DatasetPrefix is the prefix under which every part of ds is stored.
func (l Layout) DatasetPrefix(ds Dataset) string {
	return l.Output + string(ds) + "/"
}

// PartKey names the part file a run appends to ds.
func (l Layout) PartKey(ds Dataset, runID string) string {
	return l.DatasetPrefix(ds) + "part-" + runID + ".snappy.parquet"
}

// IsJSON reports whether key names a raw JSON object.
func IsJSON(key string) bool {
	return strings.HasSuffix(key, ".json")
}
