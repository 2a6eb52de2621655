package models

// Album is a row of the album dataset.
//
// Every column is nullable; a nil field is written as NULL, never as a zero value.
type Album struct {
	ID          *string `json:"album_id"`
	Name        *string `json:"album_name"`
	ReleaseDate *Date   `json:"album_release_date"`
	TotalTracks *int64  `json:"album_total_tracks"`
	URL         *string `json:"album_url"`
	Type        *string `json:"album_type"`
}

// Artist is a row of the artist dataset.
type Artist struct {
	ID   *string `json:"artist_id"`
	Name *string `json:"artist_name"`
	URL  *string `json:"artist_url"`
}

// Song is a row of the song dataset.
//
// ArtistID is the first artist credited on the album, not on the track.
type Song struct {
	ID         *string `json:"song_id"`
	Name       *string `json:"song_name"`
	DurationMS *int64  `json:"song_duration"`
	URL        *string `json:"song_url"`
	Popularity *int64  `json:"song_popularity"`
	Added      *Date   `json:"song_added"`
	AlbumID    *string `json:"album_id"`
	ArtistID   *string `json:"artist_id"`
}
