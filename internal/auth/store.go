package auth

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Credentials is the persisted credential record.
type Credentials struct {
	AccessToken  string    // bearer token for API calls
	RefreshToken string    // long-lived token used to mint new access tokens
	ExpiresIn    int       // validity duration in seconds, as last reported
	Expiry       time.Time // absolute expiry instant, derived at write time
}

// Store persists the credential record and the transient PKCE verifier.
//
// Implementations are injected rather than accessed as ambient state so tests
// can substitute [MemoryStore].
type Store interface {
	// Credentials returns the stored record, or nil when none exists.
	Credentials() (*Credentials, error)

	// SetCredentials writes the full record atomically.
	SetCredentials(creds *Credentials) error

	// Clear removes the credential record. The verifier is untouched.
	Clear() error

	// Verifier returns the stored PKCE code verifier, or "" when absent.
	Verifier() (string, error)

	// SetVerifier stores the PKCE code verifier for the in-flight handshake.
	SetVerifier(verifier string) error
}

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresIn    = "expires_in"
	keyExpires      = "expires"
	keyCodeVerifier = "code_verifier"
)

var authBucket = []byte("auth")

// BoltStore is a [Store] backed by a bbolt key/value file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the credential store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(authBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Credentials() (*Credentials, error) {
	var creds *Credentials

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(authBucket)

		access := b.Get([]byte(keyAccessToken))
		if access == nil {
			return nil
		}

		c := &Credentials{AccessToken: string(access)}
		if v := b.Get([]byte(keyRefreshToken)); v != nil {
			c.RefreshToken = string(v)
		}
		if v := b.Get([]byte(keyExpiresIn)); v != nil {
			if n, err := strconv.Atoi(string(v)); err == nil {
				c.ExpiresIn = n
			}
		}
		if v := b.Get([]byte(keyExpires)); v != nil {
			if at, err := time.Parse(time.RFC3339, string(v)); err == nil {
				c.Expiry = at
			}
		}

		creds = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	return creds, nil
}

func (s *BoltStore) SetCredentials(creds *Credentials) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(authBucket)

		if err := b.Put([]byte(keyAccessToken), []byte(creds.AccessToken)); err != nil {
			return err
		}
		if err := b.Put([]byte(keyRefreshToken), []byte(creds.RefreshToken)); err != nil {
			return err
		}
		if err := b.Put([]byte(keyExpiresIn), []byte(strconv.Itoa(creds.ExpiresIn))); err != nil {
			return err
		}
		return b.Put([]byte(keyExpires), []byte(creds.Expiry.Format(time.RFC3339)))
	})
	if err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

func (s *BoltStore) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(authBucket)

		for _, key := range []string{keyAccessToken, keyRefreshToken, keyExpiresIn, keyExpires} {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	return nil
}

func (s *BoltStore) Verifier() (string, error) {
	var verifier string

	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(authBucket).Get([]byte(keyCodeVerifier)); v != nil {
			verifier = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read verifier: %w", err)
	}

	return verifier, nil
}

func (s *BoltStore) SetVerifier(verifier string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Put([]byte(keyCodeVerifier), []byte(verifier))
	})
	if err != nil {
		return fmt.Errorf("failed to write verifier: %w", err)
	}

	return nil
}

// MemoryStore is an in-memory [Store] for tests.
type MemoryStore struct {
	mu       sync.Mutex
	creds    *Credentials
	verifier string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Credentials() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return nil, nil
	}
	c := *s.creds
	return &c, nil
}

func (s *MemoryStore) SetCredentials(creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *creds
	s.creds = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}

func (s *MemoryStore) Verifier() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifier, nil
}

func (s *MemoryStore) SetVerifier(verifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = verifier
	return nil
}
