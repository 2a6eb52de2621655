// Package services implements the upstream API boundary of the pipeline.
//
// # PlaylistSource Interface
//
// The extractor depends only on [PlaylistSource], so tests and alternative providers can stand in for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the OAuth2 client credentials grant; no user login is involved.
// Tokens are fetched on first use and refreshed by the [oauth2] transport when they expire.
// Requests pass through a [rate.Limiter] shared by the service instance.
//
// [SpotifyService.PlaylistTracks] issues exactly one GET per call. Spotify caps a page at 100 items, and the
// remaining pages are not followed.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : client_id or client_secret not configured
//   - [shared.ErrAuthFailed] : token request rejected or HTTP 401
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
//   - [shared.ErrInvalidResponse] : body that is not JSON
//
// Nothing is retried.
package services
