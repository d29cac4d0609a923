package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sweetshop/internal/directory"
	"sweetshop/internal/models"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ directory.Store = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, email, display_name, password_hash, role, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateAccount
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `
		SELECT id, email, display_name, password_hash, role, created_at
		FROM accounts ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var (
			account models.Account
			role    string
		)
		if err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.DisplayName,
			&account.PasswordHash,
			&role,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		account.Role = models.Role(role)
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
