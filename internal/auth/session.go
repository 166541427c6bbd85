package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2"
)

// expiryBuffer is subtracted from the stored expiry instant so a token close
// to expiring is replaced before it reaches the API.
const expiryBuffer = 5 * time.Minute

// Session resolves usable access tokens from a [Store], refreshing through
// the provider's token endpoint when the stored token is expired.
type Session struct {
	config *oauth2.Config
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// NewSession creates a Session over the given OAuth2 config and store.
func NewSession(config *oauth2.Config, store Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{
		config: config,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Expired reports whether creds should be treated as expired.
//
// A record with no expiry instant is expired. The boundary case, now exactly
// at expiry minus the buffer, counts as expired.
func (s *Session) Expired(creds *Credentials) bool {
	if creds == nil || creds.Expiry.IsZero() {
		return true
	}
	return !s.now().Before(creds.Expiry.Add(-expiryBuffer))
}

// AccessToken returns the current usable access token.
//
// A missing record fails with [shared.ErrNotAuthenticated]; a fresh token is
// returned unchanged with no network call; an expired one is refreshed. This
// is the only sanctioned path to a token — callers never duplicate the
// expiry-check-then-refresh decision.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	creds, err := s.store.Credentials()
	if err != nil {
		return "", err
	}

	if creds == nil || creds.AccessToken == "" {
		return "", shared.ErrNotAuthenticated
	}

	if !s.Expired(creds) {
		return creds.AccessToken, nil
	}

	return s.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for a new token pair.
//
// On success the new record is written to the store, keeping the previous
// refresh token when the provider did not rotate it. On any failure the
// record is cleared so a stale, unusable credential never survives a failed
// refresh, and the caller must reauthorize.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	creds, err := s.store.Credentials()
	if err != nil {
		return "", err
	}

	if creds == nil || creds.RefreshToken == "" {
		return "", shared.ErrNoRefreshToken
	}

	src := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := src.Token()
	if err != nil {
		if clearErr := s.store.Clear(); clearErr != nil {
			s.logger.Warnf("failed to clear credentials after rejected refresh: %v", clearErr)
		}
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	next := newCredentials(token, creds.RefreshToken, s.now())
	if err := s.store.SetCredentials(next); err != nil {
		return "", err
	}

	s.logger.Debug("access token refreshed", "expires_in", next.ExpiresIn)

	return next.AccessToken, nil
}

// Logout destroys the stored credential record.
func (s *Session) Logout() error {
	return s.store.Clear()
}

// newCredentials builds the persisted record from a token response.
//
// The expiry instant is derived here, once, from the issue clock plus the
// reported validity duration; it is never recomputed after storage.
func newCredentials(token *oauth2.Token, prevRefresh string, issuedAt time.Time) *Credentials {
	refresh := token.RefreshToken
	if refresh == "" {
		refresh = prevRefresh
	}

	expiresIn := int(token.ExpiresIn)
	if expiresIn <= 0 && !token.Expiry.IsZero() {
		expiresIn = int(token.Expiry.Sub(issuedAt).Seconds())
	}

	return &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		Expiry:       issuedAt.Add(time.Duration(expiresIn) * time.Second),
	}
}
