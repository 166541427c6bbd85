package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2"
)

// Flow runs the PKCE authorization-code handshake.
//
// Begin and Complete bracket a browser round trip: the caller navigates the
// user to the URL Begin returns, the provider redirects back with a code, and
// Complete exchanges it for the initial token pair.
type Flow struct {
	config *oauth2.Config
	store  Store
	logger *log.Logger
	now    func() time.Time
}

// NewFlow creates a PKCE flow over the given OAuth2 config and store.
func NewFlow(config *oauth2.Config, store Store, logger *log.Logger) *Flow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Flow{
		config: config,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Begin generates a code verifier, persists it so it survives the redirect
// round trip, and returns the authorization URL carrying the S256 challenge
// together with the CSRF state token.
func (f *Flow) Begin() (authURL, state string, err error) {
	state, err = shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	verifier := oauth2.GenerateVerifier()
	if err := f.store.SetVerifier(verifier); err != nil {
		return "", "", err
	}

	authURL = f.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	return authURL, state, nil
}

// Complete exchanges the authorization code plus the stored verifier for the
// initial token pair and persists it.
//
// A missing verifier fails with [shared.ErrMissingVerifier] before any
// network call. Provider rejections surface as [shared.ErrTokenExchange]
// carrying the response status and body; transport errors propagate as-is.
func (f *Flow) Complete(ctx context.Context, code string) (*Credentials, error) {
	verifier, err := f.store.Verifier()
	if err != nil {
		return nil, err
	}

	if verifier == "" {
		return nil, shared.ErrMissingVerifier
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, fmt.Errorf("%w: status %d: %s",
				shared.ErrTokenExchange, retrieveErr.Response.StatusCode, string(retrieveErr.Body))
		}
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	creds := newCredentials(token, "", f.now())
	if err := f.store.SetCredentials(creds); err != nil {
		return nil, err
	}

	f.logger.Info("authorization complete", "expires_in", creds.ExpiresIn)

	return creds, nil
}
