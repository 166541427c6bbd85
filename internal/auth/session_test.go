package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2"
)

// tokenEndpoint starts a fake token endpoint returning the given status and
// JSON body, and returns an oauth2 config pointed at it plus a counter of
// how many requests it saw.
func tokenEndpoint(t *testing.T, status int, body string) (*oauth2.Config, *int) {
	t.Helper()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	config := &oauth2.Config{
		ClientID: "test_client_id",
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/token",
		},
	}

	return config, &calls
}

func TestSessionExpired(t *testing.T) {
	session := NewSession(&oauth2.Config{}, NewMemoryStore(), nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return now }

	cases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"Nil Record", time.Time{}, true},
		{"Past Expiry", now.Add(-time.Hour), true},
		{"Within Buffer", now.Add(time.Minute), true},
		{"Exactly At Buffer Boundary", now.Add(expiryBuffer), true},
		{"Just Outside Buffer", now.Add(expiryBuffer + time.Second), false},
		{"Far Future", now.Add(time.Hour), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var creds *Credentials
			if !c.expiry.IsZero() {
				creds = &Credentials{AccessToken: "abc", Expiry: c.expiry}
			}
			if got := session.Expired(creds); got != c.want {
				t.Errorf("Expired(%v) = %v, want %v", c.expiry, got, c.want)
			}
		})
	}

	t.Run("Missing Expiry Instant", func(t *testing.T) {
		if !session.Expired(&Credentials{AccessToken: "abc"}) {
			t.Error("credentials without expiry instant must count as expired")
		}
	})
}

func TestSessionAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Store", func(t *testing.T) {
		config, calls := tokenEndpoint(t, http.StatusOK, `{}`)
		session := NewSession(config, NewMemoryStore(), nil)

		_, err := session.AccessToken(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if *calls != 0 {
			t.Errorf("expected no network calls, got %d", *calls)
		}
	})

	t.Run("Fresh Token Returned Without Network Call", func(t *testing.T) {
		config, calls := tokenEndpoint(t, http.StatusOK, `{}`)
		store := NewMemoryStore()
		store.SetCredentials(&Credentials{
			AccessToken:  "abc",
			RefreshToken: "r1",
			ExpiresIn:    3600,
			Expiry:       time.Now().Add(10 * time.Minute),
		})

		session := NewSession(config, store, nil)

		token, err := session.AccessToken(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "abc" {
			t.Errorf("expected abc, got %q", token)
		}
		if *calls != 0 {
			t.Errorf("expected no network calls, got %d", *calls)
		}
	})

	t.Run("Expired Token Refreshed", func(t *testing.T) {
		config, calls := tokenEndpoint(t, http.StatusOK,
			`{"access_token":"xyz","token_type":"Bearer","expires_in":3600}`)
		store := NewMemoryStore()
		store.SetCredentials(&Credentials{
			AccessToken:  "abc",
			RefreshToken: "r1",
			ExpiresIn:    3600,
			Expiry:       time.Now().Add(time.Minute),
		})

		session := NewSession(config, store, nil)

		token, err := session.AccessToken(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "xyz" {
			t.Errorf("expected xyz, got %q", token)
		}
		if *calls != 1 {
			t.Errorf("expected one network call, got %d", *calls)
		}

		creds, _ := store.Credentials()
		if creds.AccessToken != "xyz" {
			t.Errorf("expected stored access token xyz, got %q", creds.AccessToken)
		}
		if creds.RefreshToken != "r1" {
			t.Errorf("expected refresh token kept when not rotated, got %q", creds.RefreshToken)
		}

		remaining := time.Until(creds.Expiry)
		if remaining < 59*time.Minute || remaining > 61*time.Minute {
			t.Errorf("expected expiry about an hour out, got %v", remaining)
		}
	})

	t.Run("Rejected Refresh Clears Store", func(t *testing.T) {
		config, _ := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
		store := NewMemoryStore()
		store.SetCredentials(&Credentials{
			AccessToken:  "abc",
			RefreshToken: "r1",
			ExpiresIn:    3600,
			Expiry:       time.Now().Add(-time.Minute),
		})

		session := NewSession(config, store, nil)

		_, err := session.AccessToken(ctx)
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}

		creds, storeErr := store.Credentials()
		if storeErr != nil {
			t.Fatalf("expected no store error, got %v", storeErr)
		}
		if creds != nil {
			t.Errorf("expected store cleared after rejected refresh, got %+v", creds)
		}
	})
}

func TestSessionRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("No Refresh Token", func(t *testing.T) {
		config, calls := tokenEndpoint(t, http.StatusOK, `{}`)
		store := NewMemoryStore()
		store.SetCredentials(&Credentials{AccessToken: "abc", Expiry: time.Now()})

		session := NewSession(config, store, nil)

		_, err := session.Refresh(ctx)
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
		if *calls != 0 {
			t.Errorf("expected no network calls, got %d", *calls)
		}
	})

	t.Run("Rotated Refresh Token Stored", func(t *testing.T) {
		config, _ := tokenEndpoint(t, http.StatusOK,
			`{"access_token":"xyz","token_type":"Bearer","expires_in":3600,"refresh_token":"r2"}`)
		store := NewMemoryStore()
		store.SetCredentials(&Credentials{
			AccessToken:  "abc",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Minute),
		})

		session := NewSession(config, store, nil)

		if _, err := session.Refresh(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		creds, _ := store.Credentials()
		if creds.RefreshToken != "r2" {
			t.Errorf("expected rotated refresh token r2, got %q", creds.RefreshToken)
		}
	})
}

func TestSessionLogout(t *testing.T) {
	store := NewMemoryStore()
	store.SetCredentials(&Credentials{AccessToken: "abc", Expiry: time.Now().Add(time.Hour)})

	session := NewSession(&oauth2.Config{}, store, nil)

	if err := session.Logout(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	creds, _ := store.Credentials()
	if creds != nil {
		t.Errorf("expected empty store after logout, got %+v", creds)
	}
}
