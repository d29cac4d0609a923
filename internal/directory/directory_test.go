package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/models"
	"sweetshop/internal/security"
)

func newTestDirectory(t *testing.T, opts ...Option) *MemoryDirectory {
	t.Helper()
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
	d, err := New(context.Background(), hasher, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return d
}

type memStore struct {
	mu       sync.Mutex
	accounts []models.Account
	failSave bool
}

func (s *memStore) SaveAccount(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("disk full")
	}
	s.accounts = append(s.accounts, account)
	return nil
}

func (s *memStore) LoadAccounts(_ context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Account(nil), s.accounts...), nil
}

func TestNew_SeedsFixtures(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	admin, err := d.Authenticate(ctx, AdminEmail, AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	user, err := d.Authenticate(ctx, UserEmail, UserPassword)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestRegister_AlwaysUserRole(t *testing.T) {
	d := newTestDirectory(t)

	acc, err := d.Register(context.Background(), RegisterInput{DisplayName: "Ann", Email: "A@X.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acc.Role)
	assert.Equal(t, "a@x.com", acc.Email)
	assert.NotEmpty(t, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())

	found, err := d.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, found.ID)
}

func TestRegister_DuplicateIsCaseInsensitive(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Register(ctx, RegisterInput{DisplayName: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = d.Register(ctx, RegisterInput{DisplayName: "Ann Again", Email: "A@X.COM", Password: "secret2"})
	assert.ErrorIs(t, err, models.ErrDuplicateAccount)

	_, err = d.Register(ctx, RegisterInput{DisplayName: "Boss", Email: "ADMIN@sweetshop.com", Password: "secret2"})
	assert.ErrorIs(t, err, models.ErrDuplicateAccount)
}

func TestRegister_ConcurrentSameEmailOnlyOneWins(t *testing.T) {
	d := newTestDirectory(t)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Register(context.Background(), RegisterInput{DisplayName: "Racer", Email: "race@x.com", Password: "secret1"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, models.ErrDuplicateAccount)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_Validation(t *testing.T) {
	d := newTestDirectory(t)

	cases := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{"short name", RegisterInput{DisplayName: "A", Email: "a@x.com", Password: "secret1"}, "name"},
		{"bad email", RegisterInput{DisplayName: "Ann", Email: "not-an-email", Password: "secret1"}, "email"},
		{"short password", RegisterInput{DisplayName: "Ann", Email: "a@x.com", Password: "12345"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Register(context.Background(), tc.input)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()
	_, err := d.Register(ctx, RegisterInput{DisplayName: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = d.Authenticate(ctx, "  A@x.COM ", "secret1")
	assert.NoError(t, err, "email comparison ignores case")

	_, err = d.Authenticate(ctx, "a@x.com", "SECRET1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials, "password comparison is case sensitive")

	_, err = d.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestFindByID_Missing(t *testing.T) {
	d := newTestDirectory(t)
	_, err := d.FindByID(context.Background(), "nope")
	assert.True(t, models.IsNotFound(err))
}

func TestStore_WriteThroughAndReload(t *testing.T) {
	store := &memStore{}
	d := newTestDirectory(t, WithStore(store))
	require.Len(t, store.accounts, 2, "fixtures are persisted")

	acc, err := d.Register(context.Background(), RegisterInput{DisplayName: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	reloaded := newTestDirectory(t, WithStore(store))
	assert.Len(t, store.accounts, 3, "fixtures are not seeded twice")
	_, err = reloaded.FindByID(context.Background(), acc.ID)
	assert.NoError(t, err)
}

func TestStore_FailureLeavesDirectoryUnchanged(t *testing.T) {
	store := &memStore{}
	d := newTestDirectory(t, WithStore(store))
	store.failSave = true

	_, err := d.Register(context.Background(), RegisterInput{DisplayName: "Ann", Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)

	_, err = d.Authenticate(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
