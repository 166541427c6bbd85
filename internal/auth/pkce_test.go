package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2"
)

func TestFlowBegin(t *testing.T) {
	store := NewMemoryStore()
	config := &oauth2.Config{
		ClientID:    "test_client_id",
		RedirectURL: "http://127.0.0.1:3000/callback",
		Scopes:      []string{"user-read-private", "playlist-read-private"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.spotify.com/authorize",
			TokenURL: "https://accounts.spotify.com/api/token",
		},
	}

	flow := NewFlow(config, store, nil)

	authURL, state, err := flow.Begin()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}

	query := parsed.Query()
	if query.Get("response_type") != "code" {
		t.Errorf("expected response_type=code, got %q", query.Get("response_type"))
	}
	if query.Get("client_id") != "test_client_id" {
		t.Errorf("expected client_id, got %q", query.Get("client_id"))
	}
	if query.Get("code_challenge_method") != "S256" {
		t.Errorf("expected S256 challenge method, got %q", query.Get("code_challenge_method"))
	}
	if query.Get("code_challenge") == "" {
		t.Error("expected code_challenge to be set")
	}
	if query.Get("state") != state {
		t.Errorf("expected state %q in URL, got %q", state, query.Get("state"))
	}
	if !strings.Contains(query.Get("scope"), "user-read-private") {
		t.Errorf("expected scopes in URL, got %q", query.Get("scope"))
	}

	verifier, err := store.Verifier()
	if err != nil {
		t.Fatalf("failed to read verifier: %v", err)
	}
	if verifier == "" {
		t.Error("expected verifier persisted before navigation")
	}
}

func TestFlowComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Verifier", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer srv.Close()

		config := &oauth2.Config{
			ClientID: "test_client_id",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL + "/token"},
		}

		flow := NewFlow(config, NewMemoryStore(), nil)

		_, err := flow.Complete(ctx, "some-code")
		if !errors.Is(err, shared.ErrMissingVerifier) {
			t.Errorf("expected ErrMissingVerifier, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected zero network calls, got %d", calls)
		}
	})

	t.Run("Successful Exchange", func(t *testing.T) {
		var gotVerifier, gotGrant string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			gotVerifier = r.FormValue("code_verifier")
			gotGrant = r.FormValue("grant_type")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"initial","token_type":"Bearer","expires_in":3600,"refresh_token":"r1"}`))
		}))
		defer srv.Close()

		store := NewMemoryStore()
		store.SetVerifier("the-verifier")

		config := &oauth2.Config{
			ClientID: "test_client_id",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL + "/token"},
		}

		flow := NewFlow(config, store, nil)

		creds, err := flow.Complete(ctx, "auth-code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotGrant != "authorization_code" {
			t.Errorf("expected authorization_code grant, got %q", gotGrant)
		}
		if gotVerifier != "the-verifier" {
			t.Errorf("expected stored verifier in exchange, got %q", gotVerifier)
		}
		if creds.AccessToken != "initial" || creds.RefreshToken != "r1" {
			t.Errorf("unexpected credentials: %+v", creds)
		}

		stored, _ := store.Credentials()
		if stored == nil || stored.AccessToken != "initial" {
			t.Errorf("expected credentials persisted, got %+v", stored)
		}

		// The verifier is left behind after a successful exchange; the next
		// Begin overwrites it.
		verifier, _ := store.Verifier()
		if verifier != "the-verifier" {
			t.Errorf("expected verifier untouched, got %q", verifier)
		}
	})

	t.Run("Provider Rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		store := NewMemoryStore()
		store.SetVerifier("the-verifier")

		config := &oauth2.Config{
			ClientID: "test_client_id",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL + "/token"},
		}

		flow := NewFlow(config, store, nil)

		_, err := flow.Complete(ctx, "bad-code")
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Errorf("expected ErrTokenExchange, got %v", err)
		}
		if !strings.Contains(err.Error(), "invalid_grant") {
			t.Errorf("expected response body in error, got %v", err)
		}
	})
}
