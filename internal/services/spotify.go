// Spotify API implementation of [PlaylistSource]
//
// Endpoint reference: https://developer.spotify.com/documentation/web-api/reference/get-playlists-tracks
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRequestsPerSecond = 5.0
)

// SpotifyService implements [PlaylistSource] for the Spotify Web API.
type SpotifyService struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
//
// Recognized keys are client_id, client_secret, token_url and api_url. A non-positive rps uses the default of 5 requests per second.
func NewSpotifyService(credentials map[string]string, rps float64) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	baseURL := credentials["api_url"]
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate requests an access token and prepares the authorized client.
//
// Calling it is optional: [SpotifyService.PlaylistTracks] authenticates on first use.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	// The token source outlives this call and refreshes in the background of later requests.
	tctx := context.WithoutCancel(ctx)
	ts := s.config.TokenSource(tctx)
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.httpClient = oauth2.NewClient(tctx, ts)
	return nil
}

// PlaylistTracks fetches the first page of a playlist's tracks.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]byte, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	start := time.Now()
	body, err := s.doRequest(ctx, http.MethodGet, endpoint)
	metrics.RecordUpstreamRequest("playlist_tracks", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}
	return buf.Bytes(), nil
}

// doRequest performs an authenticated, rate-limited HTTP request to the Spotify API and returns the body.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string) ([]byte, error) {
	if s.httpClient == nil {
		if err := s.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: spotify API status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}
	return body, nil
}
