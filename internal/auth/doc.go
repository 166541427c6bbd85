// Package auth implements the Spotify credential lifecycle for spx.
//
// # Credential Store
//
// [Store] is an injected capability over a small key/value record: access
// token, refresh token, validity duration, absolute expiry, and the transient
// PKCE code verifier. [BoltStore] persists it in a bbolt file under ~/.spx;
// [MemoryStore] backs tests.
//
// The access token and its expiry are always written together, and the expiry
// is derived once at write time (issue instant + expires_in). At most one
// credential record exists per store file.
//
// # Session
//
// [Session.AccessToken] is the only sanctioned way to obtain a usable access
// token. It reads the store, checks expiry against a five minute safety
// buffer, and refreshes through the provider's token endpoint when needed.
// A rejected refresh clears the whole record so a stale credential never
// lingers; the caller must reauthorize.
//
// Concurrent callers that both observe an expired token will both refresh;
// there is no single-flight coalescing and the last write wins.
//
// # PKCE Flow
//
// [Flow.Begin] generates a code verifier, persists it, and returns the
// authorization URL carrying the S256 challenge. [Flow.Complete] exchanges
// the redirect's authorization code together with the stored verifier for the
// initial token pair and persists it through the same write path the
// refresher uses.
//
// # Transport
//
// [Transport] is an [net/http.RoundTripper] that injects the bearer token and
// recovers from exactly one class of failure: a 401 response. It consults its
// [CredentialSource] once more, replays the identical request with the new
// token, and otherwise forwards responses and errors unchanged. A second 401
// propagates to the caller.
package auth
