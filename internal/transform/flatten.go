package transform

import (
	"fmt"

	"github.com/desertthunder/spotlake/internal/models"
	"github.com/goccy/go-json"
)

// Record is a decoded raw object together with the key it was read from.
type Record struct {
	Source   string
	Playlist models.RawPlaylist
}

// Row is one flattened playlist item.
type Row struct {
	Source string
	Item   models.RawItem
}

// Decode parses a raw playlist object.
func Decode(source string, data []byte) (Record, error) {
	var playlist models.RawPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		return Record{}, fmt.Errorf("failed to decode %s: %w", source, err)
	}
	return Record{Source: source, Playlist: playlist}, nil
}

// Flatten expands every record's items into one row per item, in input order.
func Flatten(records []Record) []Row {
	n := 0
	for _, r := range records {
		n += len(r.Playlist.Items)
	}

	rows := make([]Row, 0, n)
	for _, r := range records {
		for _, item := range r.Playlist.Items {
			rows = append(rows, Row{Source: r.Source, Item: item})
		}
	}
	return rows
}
