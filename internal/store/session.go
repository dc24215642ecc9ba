package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// TokenKey is the fixed key the session token is stored under.
const TokenKey = "token"

// SessionStore holds the authentication token for the single client user.
//
// Tokens are stored verbatim. Presence of a non-empty token is all "logged in" means; shape
// and expiry are never checked.
type SessionStore interface {
	SetToken(ctx context.Context, token string) error
	// Token returns the stored token and whether one is present.
	Token(ctx context.Context) (string, bool, error)
	ClearToken(ctx context.Context) error
}

// IsLoggedIn reports whether s currently holds a token. Read errors count as logged out.
func IsLoggedIn(ctx context.Context, s SessionStore) bool {
	if s == nil {
		return false
	}
	_, ok, err := s.Token(ctx)
	return err == nil && ok
}

// SQLiteSessionStore keeps the token in the kv table of a SQLite file.
type SQLiteSessionStore struct {
	Path string
}

// NewSQLiteSessionStore returns a store backed by StatePath().
func NewSQLiteSessionStore() (*SQLiteSessionStore, error) {
	path, err := StatePath()
	if err != nil {
		return nil, err
	}
	return &SQLiteSessionStore{Path: path}, nil
}

func (s *SQLiteSessionStore) SetToken(ctx context.Context, token string) error {
	db, err := openSQLite(ctx, s.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, TokenKey, token)
	return err
}

func (s *SQLiteSessionStore) Token(ctx context.Context) (string, bool, error) {
	db, err := openSQLite(ctx, s.Path)
	if err != nil {
		return "", false, err
	}
	defer db.Close()
	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, TokenKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

func (s *SQLiteSessionStore) ClearToken(ctx context.Context) error {
	db, err := openSQLite(ctx, s.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, TokenKey)
	return err
}

// MemorySessionStore is a process-local SessionStore.
type MemorySessionStore struct {
	mu    sync.Mutex
	token string
}

func NewMemorySessionStore(token string) *MemorySessionStore {
	return &MemorySessionStore{token: token}
}

func (s *MemorySessionStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Token(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != "", nil
}

func (s *MemorySessionStore) ClearToken(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
