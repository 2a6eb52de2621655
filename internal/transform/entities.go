package transform

import "github.com/desertthunder/spotlake/internal/models"

// Albums projects the album of every row, one row per album_id.
//
// Items without a track carry no album and are skipped. Albums of local files have a null album_id and
// collapse into a single row, as they would under any group-by on that column.
func Albums(rows []Row) []models.Album {
	albums := make([]models.Album, 0, len(rows))
	for _, row := range rows {
		track := row.Item.Track
		if track == nil {
			continue
		}
		a := track.Album
		albums = append(albums, models.Album{
			ID:          a.ID,
			Name:        a.Name,
			ReleaseDate: releaseDate(a.ReleaseDate),
			TotalTracks: a.TotalTracks,
			URL:         a.ExternalURLs.Spotify,
			Type:        a.AlbumType,
		})
	}
	return Dedup(albums, func(a models.Album) nullableKey { return keyOf(a.ID) })
}

// Artists projects every track-level artist of every row, one row per artist_id.
func Artists(rows []Row) []models.Artist {
	var artists []models.Artist
	for _, row := range rows {
		if row.Item.Track == nil {
			continue
		}
		for _, a := range row.Item.Track.Artists {
			artists = append(artists, models.Artist{
				ID:   a.ID,
				Name: a.Name,
				URL:  a.ExternalURLs.Spotify,
			})
		}
	}
	return Dedup(artists, func(a models.Artist) nullableKey { return keyOf(a.ID) })
}

// Songs projects the track of every row, one row per song_id.
//
// The song is attributed to the first artist on its album, not to its own artists.
func Songs(rows []Row) []models.Song {
	songs := make([]models.Song, 0, len(rows))
	for _, row := range rows {
		track := row.Item.Track
		if track == nil {
			continue
		}

		var artistID *string
		if len(track.Album.Artists) > 0 {
			artistID = track.Album.Artists[0].ID
		}

		songs = append(songs, models.Song{
			ID:         track.ID,
			Name:       track.Name,
			DurationMS: track.DurationMS,
			URL:        track.ExternalURLs.Spotify,
			Popularity: track.Popularity,
			Added:      AddedDate(row.Item.AddedAt),
			AlbumID:    track.Album.ID,
			ArtistID:   artistID,
		})
	}
	return Dedup(songs, func(s models.Song) nullableKey { return keyOf(s.ID) })
}

// Tables holds the three extractions of one batch.
type Tables struct {
	Albums  []models.Album
	Artists []models.Artist
	Songs   []models.Song
}

// Extract runs all three extractions over the same flattened rows.
func Extract(rows []Row) Tables {
	return Tables{
		Albums:  Albums(rows),
		Artists: Artists(rows),
		Songs:   Songs(rows),
	}
}
