// Package session owns the bearer token for the lifetime of a client session.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTTL bounds a token whose claims carry no usable expiry.
const defaultTTL = 12 * time.Hour

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store holds the current bearer token. It is the single writer of session
// state; all other components read through Token. With a non-empty dir the
// token survives process restarts within its validity window.
type Store struct {
	mu   sync.Mutex
	tok  string
	exp  time.Time
	path string // empty disables persistence
}

// New builds a Store backed by dir/token.json. An empty dir keeps the
// session in memory only. A persisted token that is expired or unreadable
// loads as absent.
func New(dir string) *Store {
	s := &Store{}
	if dir != "" {
		s.path = filepath.Join(dir, "token.json")
		s.restore()
	}
	return s
}

func (s *Store) restore() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return
	}
	s.tok, s.exp = tf.AccessToken, tf.ExpiresAt
}

// SetToken stores the token for the remainder of the session. Writes are
// serialized; the last completed write wins.
func (s *Store) SetToken(tok string) error {
	exp := tokenExpiry(tok)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok, s.exp = tok, exp
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: tok, ExpiresAt: exp}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

// Token returns the current token, or "" when absent or expired. Never
// errors; callers treat "" as the explicit absent value.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == "" || time.Now().After(s.exp) {
		return ""
	}
	return s.tok
}

// ExpiresAt reports the current token's expiry; zero when absent.
func (s *Store) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == "" {
		return time.Time{}
	}
	return s.exp
}

// Clear removes the token (logout). Removing an already-absent token is a
// no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok, s.exp = "", time.Time{}
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// tokenExpiry reads the exp claim without validating the signature; the
// client holds no signing key. Tokens without parseable claims get a
// default TTL.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(defaultTTL)
}
