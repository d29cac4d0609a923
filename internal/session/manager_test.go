package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/models"
)

type stubAccounts struct {
	accounts map[string]models.Account
}

func (s *stubAccounts) FindByID(_ context.Context, id string) (models.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return models.Account{}, models.NewNotFoundError("account", id)
	}
	return acc, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	accounts := &stubAccounts{accounts: map[string]models.Account{
		"acc-1": {ID: "acc-1", Email: "a@x.com", Role: models.RoleUser},
		"acc-2": {ID: "acc-2", Email: "b@x.com", Role: models.RoleAdmin},
	}}
	m, err := NewManager(accounts, []byte("test-secret"), zerolog.Nop(), WithClock(clock.Now))
	require.NoError(t, err)
	return m, clock
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(&stubAccounts{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestIssue_SetsFixedTTL(t *testing.T) {
	m, clock := newTestManager(t)

	s, err := m.Issue(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, clock.Now(), s.IssuedAt)
	assert.Equal(t, clock.Now().Add(24*time.Hour), s.ExpiresAt)
}

func TestIssue_MultipleSessionsPerAccount(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	a, err := m.Issue(ctx, "acc-1")
	require.NoError(t, err)
	b, err := m.Issue(ctx, "acc-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, 2, m.Active())

	m.Revoke(ctx, a.Token)
	_, err = m.Validate(ctx, b.Token)
	assert.NoError(t, err, "revoking one session leaves the other active")
}

func TestValidate_ResolvesAccount(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Issue(context.Background(), "acc-2")
	require.NoError(t, err)

	acc, err := m.Validate(context.Background(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-2", acc.ID)
	assert.Equal(t, models.RoleAdmin, acc.Role)
}

func TestValidate_UnknownToken(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Validate(context.Background(), "garbage")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestValidate_ForeignSignature(t *testing.T) {
	m, _ := newTestManager(t)
	other, err := NewManager(&stubAccounts{}, []byte("other-secret"), zerolog.Nop())
	require.NoError(t, err)

	s, err := other.Issue(context.Background(), "acc-1")
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), s.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestValidate_ExpiryEvicts(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()
	s, err := m.Issue(ctx, "acc-1")
	require.NoError(t, err)

	clock.Advance(TTL)
	_, err = m.Validate(ctx, s.Token)
	assert.NoError(t, err, "a session is still valid exactly at its expiry instant")

	clock.Advance(time.Second)
	_, err = m.Validate(ctx, s.Token)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	_, err = m.Validate(ctx, s.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Equal(t, 0, m.Active())
}

func TestValidate_ConcurrentExpiryReportsOnce(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()
	s, err := m.Issue(ctx, "acc-1")
	require.NoError(t, err)
	clock.Advance(TTL + time.Minute)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Validate(ctx, s.Token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	expired := 0
	for err := range errs {
		if errors.Is(err, models.ErrSessionExpired) {
			expired++
			continue
		}
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	}
	assert.Equal(t, 1, expired)
}

func TestValidate_DeletedAccount(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Issue(context.Background(), "ghost")
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), s.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Equal(t, 0, m.Active())
}

func TestRevoke_Idempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	s, err := m.Issue(ctx, "acc-1")
	require.NoError(t, err)

	m.Revoke(ctx, s.Token)
	m.Revoke(ctx, s.Token)
	m.Revoke(ctx, "not-a-token")

	_, err = m.Validate(ctx, s.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}
