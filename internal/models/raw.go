package models

// RawPlaylist is the playlist-tracks paging object written by the extractor.
//
// Only the fields read by the transform are typed; the stored document keeps everything the API returned.
type RawPlaylist struct {
	Href   string    `json:"href"`
	Items  []RawItem `json:"items"`
	Limit  int       `json:"limit"`
	Next   *string   `json:"next"`
	Offset int       `json:"offset"`
	Total  int       `json:"total"`
}

// RawItem is one playlist entry.
type RawItem struct {
	AddedAt string    `json:"added_at"`
	Track   *RawTrack `json:"track"`
}

// RawTrack is the track object nested in an item.
//
// Scalars are pointers because the API sends null for them on local files and unavailable tracks.
type RawTrack struct {
	ID           *string      `json:"id"`
	Name         *string      `json:"name"`
	DurationMS   *int64       `json:"duration_ms"`
	Popularity   *int64       `json:"popularity"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Artists      []RawArtist  `json:"artists"`
	Album        RawAlbum     `json:"album"`
}

// RawAlbum is the album object nested in a track.
type RawAlbum struct {
	ID           *string      `json:"id"`
	Name         *string      `json:"name"`
	AlbumType    *string      `json:"album_type"`
	ReleaseDate  *string      `json:"release_date"`
	TotalTracks  *int64       `json:"total_tracks"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Artists      []RawArtist  `json:"artists"`
}

// RawArtist is a simplified artist object.
type RawArtist struct {
	ID           *string      `json:"id"`
	Name         *string      `json:"name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// ExternalURLs holds the public links for an object. Local files have none.
type ExternalURLs struct {
	Spotify *string `json:"spotify"`
}
