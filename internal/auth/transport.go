package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/spx/internal/shared"
)

// CredentialSource yields the access token used to authorize outgoing
// requests. [Session] is the production implementation.
type CredentialSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Transport is an [http.RoundTripper] that sets the bearer authorization
// header from a [CredentialSource] and recovers from a single class of
// failure: a 401 response.
//
// On the first 401 the source is consulted once more and the identical
// request replayed with the token it returns. A second 401 propagates to the
// caller; so does every non-401 failure. The request is therefore issued at
// most twice.
type Transport struct {
	// Source supplies access tokens. Required.
	Source CredentialSource

	// Base is the underlying round tripper. Defaults to
	// [http.DefaultTransport].
	Base http.RoundTripper
}

// NewTransport creates a Transport over the given credential source.
func NewTransport(source CredentialSource) *Transport {
	return &Transport{Source: source}
}

// Client returns an [http.Client] that routes through this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil {
		return nil, fmt.Errorf("auth: transport has no credential source")
	}

	token, err := t.Source.AccessToken(req.Context())
	if err != nil {
		return nil, err
	}

	replay, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	attempt, err := authorizedClone(req, token, replay)
	if err != nil {
		return nil, err
	}

	resp, err := t.base().RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// First rejection: one reissue, then replay the identical request. If no
	// replacement token can be obtained the failure is terminal and the
	// caller must send the user back through login.
	token, err = t.Source.AccessToken(req.Context())
	if err != nil {
		drain(resp)
		return nil, fmt.Errorf("%w: token rejected and no replacement available: %v", shared.ErrNotAuthenticated, err)
	}

	retry, err := authorizedClone(req, token, replay)
	if err != nil {
		drain(resp)
		return nil, err
	}

	drain(resp)

	return t.base().RoundTrip(retry)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// replayableBody captures the request body so it can be sent twice. Bodies
// without GetBody are buffered in memory.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.GetBody != nil {
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}

	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func authorizedClone(req *http.Request, token string, replay func() (io.ReadCloser, error)) (*http.Request, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)

	if replay != nil {
		body, err := replay()
		if err != nil {
			return nil, fmt.Errorf("failed to replay request body: %w", err)
		}
		clone.Body = body
	}

	return clone, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
