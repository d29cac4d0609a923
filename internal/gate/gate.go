// Package gate authorizes ledger calls: it validates the caller's session,
// checks the role the call needs, then runs the call.
package gate

import (
	"context"

	"github.com/rs/zerolog"

	"sweetshop/internal/models"
)

type SessionValidator interface {
	Validate(ctx context.Context, token string) (models.Account, error)
}

type Gate struct {
	sessions SessionValidator
	log      zerolog.Logger
}

func New(sessions SessionValidator, log zerolog.Logger) *Gate {
	return &Gate{sessions: sessions, log: log}
}

// Authorize returns the account behind token if it holds required.
// Session errors are returned unchanged.
func (g *Gate) Authorize(ctx context.Context, token string, required models.Role) (models.Account, error) {
	account, err := g.sessions.Validate(ctx, token)
	if err != nil {
		return models.Account{}, err
	}
	if required == models.RoleAdmin && account.Role != models.RoleAdmin {
		g.log.Warn().
			Str("account_id", account.ID).
			Str("required_role", string(required)).
			Msg("forbidden")
		return models.Account{}, &models.ForbiddenError{RequiredRole: required}
	}
	return account, nil
}

// Call runs op on behalf of the account behind token once it is authorized
// for required. op's result and error come back untouched.
func Call[T any](ctx context.Context, g *Gate, token string, required models.Role, op func(context.Context, models.Account) (T, error)) (T, error) {
	account, err := g.Authorize(ctx, token, required)
	if err != nil {
		var zero T
		return zero, err
	}
	return op(ctx, account)
}
