package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/models"
)

type stubValidator struct {
	accounts map[string]models.Account
	err      error
}

func (s *stubValidator) Validate(_ context.Context, token string) (models.Account, error) {
	if s.err != nil {
		return models.Account{}, s.err
	}
	acc, ok := s.accounts[token]
	if !ok {
		return models.Account{}, models.ErrSessionNotFound
	}
	return acc, nil
}

func newTestGate(err error) *Gate {
	return New(&stubValidator{
		err: err,
		accounts: map[string]models.Account{
			"user-token":  {ID: "u", Role: models.RoleUser},
			"admin-token": {ID: "a", Role: models.RoleAdmin},
		},
	}, zerolog.Nop())
}

func TestCall_UserAllowedForUserOps(t *testing.T) {
	g := newTestGate(nil)
	got, err := Call(context.Background(), g, "user-token", models.RoleUser, func(_ context.Context, acc models.Account) (string, error) {
		return acc.ID, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u", got)
}

func TestCall_AdminAllowedEverywhere(t *testing.T) {
	g := newTestGate(nil)
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		_, err := Call(context.Background(), g, "admin-token", role, func(context.Context, models.Account) (struct{}, error) {
			return struct{}{}, nil
		})
		assert.NoError(t, err)
	}
}

func TestCall_UserForbiddenForAdminOps(t *testing.T) {
	g := newTestGate(nil)
	called := false
	_, err := Call(context.Background(), g, "user-token", models.RoleAdmin, func(context.Context, models.Account) (int, error) {
		called = true
		return 0, nil
	})

	var forbidden *models.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, models.RoleAdmin, forbidden.RequiredRole)
	assert.False(t, called)
}

func TestCall_SessionErrorsPropagate(t *testing.T) {
	for _, sessionErr := range []error{models.ErrSessionExpired, models.ErrSessionNotFound} {
		g := newTestGate(sessionErr)
		_, err := Call(context.Background(), g, "user-token", models.RoleUser, func(context.Context, models.Account) (int, error) {
			t.Fatal("operation must not run")
			return 0, nil
		})
		assert.ErrorIs(t, err, sessionErr)
	}
}

func TestCall_OperationErrorUnchanged(t *testing.T) {
	g := newTestGate(nil)
	opErr := &models.OutOfStockError{Available: 0}
	_, err := Call(context.Background(), g, "user-token", models.RoleUser, func(context.Context, models.Account) (int, error) {
		return 0, opErr
	})
	assert.True(t, errors.Is(err, opErr))
}
