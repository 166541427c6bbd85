package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/spx/internal/auth"
	"golang.org/x/oauth2"
)

func newTestFlow(t *testing.T) (*auth.Flow, *auth.MemoryStore) {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"issued","token_type":"Bearer","expires_in":3600,"refresh_token":"r1"}`))
	}))
	t.Cleanup(tokenSrv.Close)

	store := auth.NewMemoryStore()
	store.SetVerifier("test-verifier")

	config := &oauth2.Config{
		ClientID: "test_client_id",
		Endpoint: oauth2.Endpoint{TokenURL: tokenSrv.URL + "/token"},
	}

	return auth.NewFlow(config, store, nil), store
}

func TestCallbackHandler(t *testing.T) {
	t.Run("Successful Callback", func(t *testing.T) {
		flow, store := newTestFlow(t)
		handler := NewCallbackHandler(flow, "expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Credentials == nil || result.Credentials.AccessToken != "issued" {
			t.Errorf("unexpected credentials: %+v", result.Credentials)
		}

		creds, _ := store.Credentials()
		if creds == nil || creds.AccessToken != "issued" {
			t.Errorf("expected credentials persisted, got %+v", creds)
		}
	})

	t.Run("State Mismatch", func(t *testing.T) {
		flow, _ := newTestFlow(t)
		handler := NewCallbackHandler(flow, "expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected state mismatch error")
		}
	})

	t.Run("Provider Error Parameter", func(t *testing.T) {
		flow, _ := newTestFlow(t)
		handler := NewCallbackHandler(flow, "expected-state")

		req := httptest.NewRequest(http.MethodGet,
			"/callback?state=expected-state&error=access_denied&error_description=user+denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected authorization error")
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		flow, _ := newTestFlow(t)
		handler := NewCallbackHandler(flow, "expected-state")

		first := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&code=auth-code", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("expected middleware applied in registration order, got %v", order)
		}
	})
}
