// Package transform turns raw playlist records into the album, artist and song datasets.
//
// Everything here is a pure function over in-memory values; reading and writing objects is left to the caller.
//
// The pipeline for one batch is:
//
//	records := Decode(...)           // one RawPlaylist per landing object
//	rows := Flatten(records)         // one Row per playlist item, computed once
//	Albums(rows), Artists(rows), Songs(rows)
//	EncodeAlbums(...), EncodeArtists(...), EncodeSongs(...)
//
// Each extraction deduplicates by its primary key within the batch. Keys are not deduplicated against
// earlier batches, so appending two batches that share keys repeats those keys in the output.
package transform
