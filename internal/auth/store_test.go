package auth

import (
	"path/filepath"
	"testing"
	"time"
)

func storeImplementations(t *testing.T) map[string]Store {
	t.Helper()

	boltStore, err := OpenBoltStore(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { boltStore.Close() })

	return map[string]Store{
		"Bolt":   boltStore,
		"Memory": NewMemoryStore(),
	}
}

func TestStore(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Empty Store Returns Nil", func(t *testing.T) {
				creds, err := store.Credentials()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if creds != nil {
					t.Errorf("expected nil credentials, got %+v", creds)
				}
			})

			t.Run("Round Trip", func(t *testing.T) {
				expiry := time.Now().Add(time.Hour).Truncate(time.Second)
				want := &Credentials{
					AccessToken:  "abc",
					RefreshToken: "r1",
					ExpiresIn:    3600,
					Expiry:       expiry,
				}

				if err := store.SetCredentials(want); err != nil {
					t.Fatalf("failed to set credentials: %v", err)
				}

				got, err := store.Credentials()
				if err != nil {
					t.Fatalf("failed to get credentials: %v", err)
				}
				if got == nil {
					t.Fatal("expected credentials, got nil")
				}
				if got.AccessToken != "abc" || got.RefreshToken != "r1" || got.ExpiresIn != 3600 {
					t.Errorf("unexpected credentials: %+v", got)
				}
				if !got.Expiry.Equal(expiry) {
					t.Errorf("expected expiry %v, got %v", expiry, got.Expiry)
				}
			})

			t.Run("Clear Removes Whole Record", func(t *testing.T) {
				if err := store.SetVerifier("v1"); err != nil {
					t.Fatalf("failed to set verifier: %v", err)
				}

				if err := store.Clear(); err != nil {
					t.Fatalf("failed to clear: %v", err)
				}

				creds, err := store.Credentials()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if creds != nil {
					t.Errorf("expected nil credentials after clear, got %+v", creds)
				}

				// Clear is scoped to the credential record; the verifier
				// survives.
				verifier, err := store.Verifier()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if verifier != "v1" {
					t.Errorf("expected verifier to survive clear, got %q", verifier)
				}
			})

			t.Run("Verifier Round Trip", func(t *testing.T) {
				if err := store.SetVerifier("challenge-me"); err != nil {
					t.Fatalf("failed to set verifier: %v", err)
				}

				verifier, err := store.Verifier()
				if err != nil {
					t.Fatalf("failed to get verifier: %v", err)
				}
				if verifier != "challenge-me" {
					t.Errorf("expected challenge-me, got %q", verifier)
				}
			})
		})
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.db")

	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	creds := &Credentials{
		AccessToken:  "persisted",
		RefreshToken: "r1",
		ExpiresIn:    3600,
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := store.SetCredentials(creds); err != nil {
		t.Fatalf("failed to set credentials: %v", err)
	}
	store.Close()

	reopened, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Credentials()
	if err != nil {
		t.Fatalf("failed to get credentials: %v", err)
	}
	if got == nil || got.AccessToken != "persisted" {
		t.Errorf("expected persisted credentials, got %+v", got)
	}
}
