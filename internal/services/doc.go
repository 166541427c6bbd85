// Package services implements the Spotify Web API client used by the CLI.
//
// # Service Interface
//
// [Service] is the typed surface commands and background tasks depend on.
// [SpotifyService] is the only implementation; the interface exists so the
// export engine and the TUI can run against fakes in tests.
//
// # Authentication
//
// The service never handles tokens itself. It is constructed over an
// *http.Client whose transport attaches credentials to every request and
// retries once on a rejected token. A [shared.ErrNotAuthenticated] surfacing
// from a call means the credential source could not produce a usable token
// and the user must log in again.
//
// # Playback
//
// [Player] covers the Spotify Connect endpoints. These respond with 204 and
// an empty body on success; the client treats empty bodies as a nil result
// rather than a decode failure. A 404 from a player endpoint means no device
// is active and is mapped to [shared.ErrNoActiveDevice].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : the API rejected a request, message included
//   - [shared.ErrTrackNotFound] : search produced no match
//   - [shared.ErrNoActiveDevice] : player endpoint had no device to act on
//   - [shared.ErrInvalidArgument] : a call was malformed before any request
//
// # Caching
//
// When a cache is attached via [SpotifyService.SetCache], fetched playlists
// and tracks are written through to the local SQLite cache. Cache failures
// are logged and never affect the API result.
package services
