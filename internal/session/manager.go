// Package session issues, validates and revokes bearer sessions.
//
// A session is Active until it is revoked or until a validation observes that
// its expiry has passed, at which point it is evicted. Both ends are terminal.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sweetshop/internal/models"
	"sweetshop/internal/security"
)

// TTL is the fixed lifetime of every session.
const TTL = 24 * time.Hour

// AccountLookup is the read-only view of the account directory the manager needs.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
}

type Option func(*Manager)

func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]models.Session

	accounts AccountLookup
	secret   []byte
	clock    func() time.Time
	log      zerolog.Logger
}

func NewManager(accounts AccountLookup, secret []byte, log zerolog.Logger, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret required")
	}
	m := &Manager{
		sessions: make(map[string]models.Session),
		accounts: accounts,
		secret:   secret,
		clock:    time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue creates a new session for accountID. Earlier sessions of the same
// account are left untouched.
func (m *Manager) Issue(_ context.Context, accountID string) (models.Session, error) {
	sid, err := security.RandomString(32)
	if err != nil {
		return models.Session{}, fmt.Errorf("session id: %w", err)
	}

	now := m.clock().UTC()
	s := models.Session{
		ID:        sid,
		AccountID: accountID,
		IssuedAt:  now,
		ExpiresAt: now.Add(TTL),
	}
	s.Token, err = security.GenerateSessionToken(m.secret, s.ID, accountID, s.IssuedAt, s.ExpiresAt)
	if err != nil {
		return models.Session{}, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.log.Debug().Str("account_id", accountID).Time("expires_at", s.ExpiresAt).Msg("session issued")
	return s, nil
}

// Validate resolves the account behind token. An expired session is evicted
// and reported once as expired; later calls see it as not found.
func (m *Manager) Validate(ctx context.Context, token string) (models.Account, error) {
	claims, err := security.ParseSessionToken(token, m.secret)
	if err != nil {
		return models.Account{}, models.ErrSessionNotFound
	}

	m.mu.Lock()
	s, ok := m.sessions[claims.SessionID]
	if !ok || s.Token != token {
		m.mu.Unlock()
		return models.Account{}, models.ErrSessionNotFound
	}
	if s.Expired(m.clock()) {
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		m.log.Debug().Str("account_id", s.AccountID).Msg("session expired")
		return models.Account{}, models.ErrSessionExpired
	}
	m.mu.Unlock()

	account, err := m.accounts.FindByID(ctx, s.AccountID)
	if err != nil {
		if models.IsNotFound(err) {
			m.evict(s.ID)
			return models.Account{}, models.ErrSessionNotFound
		}
		return models.Account{}, fmt.Errorf("resolve account: %w", err)
	}
	return account, nil
}

// Revoke removes the session behind token if there is one.
func (m *Manager) Revoke(_ context.Context, token string) {
	claims, err := security.ParseSessionToken(token, m.secret)
	if err != nil {
		return
	}
	m.evict(claims.SessionID)
}

// Active returns the number of sessions not yet revoked or evicted, including
// ones that have expired but not been validated since.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) evict(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
