// package services defines interface PlaylistSource for reading playlist data from HTTP APIs
//
// Spotify Web API
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/spotlake/internal/shared"
)

// PlaylistSource is an upstream API that can return a playlist's track listing as raw JSON.
type PlaylistSource interface {
	// PlaylistTracks fetches one page of the playlist's tracks and returns the response body unchanged apart from whitespace.
	PlaylistTracks(ctx context.Context, playlistID string) ([]byte, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// ParsePlaylistID extracts a playlist ID from a bare ID, a spotify:playlist: URI, or an API/web link.
//
// For links the ID is the last path segment; query strings are dropped.
func ParsePlaylistID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	if rest, ok := strings.CutPrefix(link, "spotify:playlist:"); ok {
		link = rest
	}

	if strings.Contains(link, "/") {
		u, err := url.Parse(link)
		if err != nil {
			return "", fmt.Errorf("%w: playlist link %q: %v", shared.ErrInvalidArgument, link, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		link = segments[len(segments)-1]
		if link == "tracks" && len(segments) > 1 {
			link = segments[len(segments)-2]
		}
	}

	if link == "" || strings.ContainsAny(link, " ?#:") {
		return "", fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, link)
	}
	return link, nil
}
