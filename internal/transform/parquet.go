package transform

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/spotlake/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Output schemas. Column names match the downstream tables; every column is nullable because the
// upstream API sends null ids, counts and links for local files.
var (
	AlbumSchema = parquet.NewSchema("album", parquet.Group{
		"album_id":           parquet.Optional(parquet.String()),
		"album_name":         parquet.Optional(parquet.String()),
		"album_release_date": parquet.Optional(parquet.Date()),
		"album_total_tracks": parquet.Optional(parquet.Int(64)),
		"album_url":          parquet.Optional(parquet.String()),
		"album_type":         parquet.Optional(parquet.String()),
	})

	ArtistSchema = parquet.NewSchema("artist", parquet.Group{
		"artist_id":   parquet.Optional(parquet.String()),
		"artist_name": parquet.Optional(parquet.String()),
		"artist_url":  parquet.Optional(parquet.String()),
	})

	SongSchema = parquet.NewSchema("song", parquet.Group{
		"song_id":         parquet.Optional(parquet.String()),
		"song_name":       parquet.Optional(parquet.String()),
		"song_duration":   parquet.Optional(parquet.Int(64)),
		"song_url":        parquet.Optional(parquet.String()),
		"song_popularity": parquet.Optional(parquet.Int(64)),
		"song_added":      parquet.Optional(parquet.Date()),
		"album_id":        parquet.Optional(parquet.String()),
		"artist_id":       parquet.Optional(parquet.String()),
	})
)

// rowBuilder fills a [parquet.Row] by column name for a flat schema.
type rowBuilder struct {
	schema *parquet.Schema
	row    parquet.Row
}

func newRowBuilder(schema *parquet.Schema) *rowBuilder {
	return &rowBuilder{schema: schema, row: make(parquet.Row, len(schema.Columns()))}
}

func (b *rowBuilder) set(name string, v parquet.Value, definitionLevel int) *rowBuilder {
	col, ok := b.schema.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("column %q not in schema %s", name, b.schema.Name()))
	}
	b.row[col.ColumnIndex] = v.Level(0, definitionLevel, col.ColumnIndex)
	return b
}

func (b *rowBuilder) null(name string) *rowBuilder {
	return b.set(name, parquet.NullValue(), 0)
}

func (b *rowBuilder) str(name string, v *string) *rowBuilder {
	if v == nil {
		return b.null(name)
	}
	return b.set(name, parquet.ByteArrayValue([]byte(*v)), 1)
}

func (b *rowBuilder) integer(name string, v *int64) *rowBuilder {
	if v == nil {
		return b.null(name)
	}
	return b.set(name, parquet.Int64Value(*v), 1)
}

func (b *rowBuilder) date(name string, d *models.Date) *rowBuilder {
	if d == nil {
		return b.null(name)
	}
	return b.set(name, parquet.Int32Value(d.Days()), 1)
}

func (b *rowBuilder) build() parquet.Row {
	row := b.row
	b.row = make(parquet.Row, len(row))
	return row
}

// EncodeAlbums writes albums as a snappy-compressed Parquet file.
func EncodeAlbums(albums []models.Album) ([]byte, error) {
	b := newRowBuilder(AlbumSchema)
	rows := make([]parquet.Row, 0, len(albums))
	for _, a := range albums {
		rows = append(rows, b.
			str("album_id", a.ID).
			str("album_name", a.Name).
			date("album_release_date", a.ReleaseDate).
			integer("album_total_tracks", a.TotalTracks).
			str("album_url", a.URL).
			str("album_type", a.Type).
			build())
	}
	return encode(AlbumSchema, rows)
}

// EncodeArtists writes artists as a snappy-compressed Parquet file.
func EncodeArtists(artists []models.Artist) ([]byte, error) {
	b := newRowBuilder(ArtistSchema)
	rows := make([]parquet.Row, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, b.
			str("artist_id", a.ID).
			str("artist_name", a.Name).
			str("artist_url", a.URL).
			build())
	}
	return encode(ArtistSchema, rows)
}

// EncodeSongs writes songs as a snappy-compressed Parquet file.
func EncodeSongs(songs []models.Song) ([]byte, error) {
	b := newRowBuilder(SongSchema)
	rows := make([]parquet.Row, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, b.
			str("song_id", s.ID).
			str("song_name", s.Name).
			integer("song_duration", s.DurationMS).
			str("song_url", s.URL).
			integer("song_popularity", s.Popularity).
			date("song_added", s.Added).
			str("album_id", s.AlbumID).
			str("artist_id", s.ArtistID).
			build())
	}
	return encode(SongSchema, rows)
}

func encode(schema *parquet.Schema, rows []parquet.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewWriter(&buf, schema, parquet.Compression(&parquet.Snappy))
	if _, err := w.WriteRows(rows); err != nil {
		return nil, fmt.Errorf("failed to write %s rows: %w", schema.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s writer: %w", schema.Name(), err)
	}
	return buf.Bytes(), nil
}
