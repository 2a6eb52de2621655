// Package models defines the data shapes that move through the spotlake pipeline.
//
// The package contains three categories of types:
//
// 1. Raw records: the nested playlist-tracks document as returned by the Spotify Web API
//   - [RawPlaylist] : One extraction run's paging object
//   - [RawItem] : A playlist entry wrapping a track and its added_at timestamp
//   - [RawTrack], [RawAlbum], [RawArtist] : Nested track metadata
//
// 2. Derived entities: flat rows written to the columnar output datasets
//   - [Album] : Unique by album_id
//   - [Artist] : Unique by artist_id
//   - [Song] : Unique by song_id, referencing an album and its first album-level artist
//
// 3. Persistent entities: database-backed bookkeeping for job runs
//   - [JobRun] : One execution of a named job with its outcome counts
//   - [Lease] : Run ownership of a storage prefix
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
