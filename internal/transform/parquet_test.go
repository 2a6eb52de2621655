package transform

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/spotlake/internal/models"
	tu "github.com/desertthunder/spotlake/internal/testing"
	"github.com/parquet-go/parquet-go"
)

// readColumns decodes a Parquet file into one map per row keyed by column name.
func readColumns(t *testing.T, data []byte) []map[string]parquet.Value {
	t.Helper()

	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open parquet file: %v", err)
	}

	names := f.Schema().Columns()
	var out []map[string]parquet.Value
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, rg.NumRows())
		n, err := rows.ReadRows(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("failed to read rows: %v", err)
		}
		rows.Close()

		for _, row := range buf[:n] {
			m := make(map[string]parquet.Value, len(row))
			for _, v := range row {
				m[names[v.Column()][0]] = v
			}
			out = append(out, m)
		}
	}
	return out
}

func TestEncode(t *testing.T) {
	t.Run("Albums", func(t *testing.T) {
		release := ReleaseDate("2020")
		data, err := EncodeAlbums([]models.Album{
			{ID: tu.Ptr("a1"), Name: tu.Ptr("One"), ReleaseDate: release, TotalTracks: tu.Ptr[int64](10), URL: tu.Ptr("u1"), Type: tu.Ptr("album")},
			{ID: tu.Ptr("a2"), Name: tu.Ptr("Two"), ReleaseDate: nil, TotalTracks: tu.Ptr[int64](1), URL: tu.Ptr("u2"), Type: tu.Ptr("single")},
		})
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		rows := readColumns(t, data)
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}

		if got := string(rows[0]["album_id"].ByteArray()); got != "a1" {
			t.Errorf("expected a1, got %s", got)
		}
		if got := rows[0]["album_release_date"].Int32(); got != release.Days() {
			t.Errorf("expected %d days, got %d", release.Days(), got)
		}
		if !rows[1]["album_release_date"].IsNull() {
			t.Error("missing release date should be null")
		}
		if got := rows[1]["album_total_tracks"].Int64(); got != 1 {
			t.Errorf("expected 1 track, got %d", got)
		}
	})

	t.Run("Artists", func(t *testing.T) {
		data, err := EncodeArtists([]models.Artist{{ID: tu.Ptr("r1"), Name: tu.Ptr("Ada"), URL: tu.Ptr("u")}})
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		rows := readColumns(t, data)
		if len(rows) != 1 || string(rows[0]["artist_name"].ByteArray()) != "Ada" {
			t.Errorf("unexpected rows %v", rows)
		}
	})

	t.Run("Songs", func(t *testing.T) {
		added := AddedDate("2024-03-05T10:20:30Z")
		data, err := EncodeSongs([]models.Song{
			{
				ID:         tu.Ptr("s1"),
				Name:       tu.Ptr("Song"),
				DurationMS: tu.Ptr[int64](1000),
				URL:        tu.Ptr("u"),
				Popularity: tu.Ptr[int64](50),
				Added:      added,
				AlbumID:    tu.Ptr("a1"),
				ArtistID:   tu.Ptr("r1"),
			},
		})
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		rows := readColumns(t, data)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		row := rows[0]
		if models.DateFromDays(row["song_added"].Int32()).String() != "2024-03-05" {
			t.Errorf("unexpected song_added %v", row["song_added"])
		}
		if string(row["artist_id"].ByteArray()) != "r1" || row["song_duration"].Int64() != 1000 {
			t.Errorf("unexpected row %v", row)
		}
	})

	t.Run("Null Fields", func(t *testing.T) {
		data, err := EncodeSongs([]models.Song{{Name: tu.Ptr("demo take"), DurationMS: tu.Ptr[int64](215000)}})
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		rows := readColumns(t, data)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		row := rows[0]
		for _, col := range []string{"song_id", "song_url", "song_popularity", "song_added", "album_id", "artist_id"} {
			if !row[col].IsNull() {
				t.Errorf("expected %s to be null, got %v", col, row[col])
			}
		}
		if row["song_name"].IsNull() || string(row["song_name"].ByteArray()) != "demo take" {
			t.Errorf("unexpected song_name %v", row["song_name"])
		}
		if row["song_duration"].Int64() != 215000 {
			t.Errorf("unexpected song_duration %v", row["song_duration"])
		}
	})

	t.Run("Schema", func(t *testing.T) {
		for _, col := range []string{"song_id", "song_name", "song_duration", "song_url", "song_popularity", "song_added", "album_id", "artist_id"} {
			leaf, ok := SongSchema.Lookup(col)
			if !ok {
				t.Errorf("song schema missing column %s", col)
				continue
			}
			if !leaf.Node.Optional() {
				t.Errorf("column %s should be nullable", col)
			}
		}
	})
}
