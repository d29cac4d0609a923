// Package directory holds the registered accounts and checks their credentials.
package directory

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"sweetshop/internal/ids"
	"sweetshop/internal/models"
)

// Directory is the account capability the rest of the core depends on.
type Directory interface {
	Register(ctx context.Context, input RegisterInput) (models.Account, error)
	Authenticate(ctx context.Context, email, password string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
}

// Store persists accounts behind the in-memory directory.
type Store interface {
	SaveAccount(ctx context.Context, account models.Account) error
	LoadAccounts(ctx context.Context) ([]models.Account, error)
}

type Hasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, encodedHash []byte) (bool, error)
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

const (
	minNameLen     = 2
	maxNameLen     = 50
	minPasswordLen = 6
)

type Option func(*MemoryDirectory)

func WithStore(store Store) Option {
	return func(d *MemoryDirectory) { d.store = store }
}

func WithClock(clock func() time.Time) Option {
	return func(d *MemoryDirectory) { d.clock = clock }
}

// MemoryDirectory keeps accounts in memory, optionally writing through to a Store.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byEmail map[string]string

	hasher Hasher
	store  Store
	clock  func() time.Time
	log    zerolog.Logger
}

var _ Directory = (*MemoryDirectory)(nil)

// New builds a directory, loads any stored accounts and makes sure the
// fixture accounts exist.
func New(ctx context.Context, hasher Hasher, log zerolog.Logger, opts ...Option) (*MemoryDirectory, error) {
	d := &MemoryDirectory{
		byID:    make(map[string]models.Account),
		byEmail: make(map[string]string),
		hasher:  hasher,
		clock:   time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.store != nil {
		accounts, err := d.store.LoadAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("load accounts: %w", err)
		}
		for _, acc := range accounts {
			d.byID[acc.ID] = acc
			d.byEmail[normalizeEmail(acc.Email)] = acc.ID
		}
	}

	if err := d.seed(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MemoryDirectory) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Email = normalizeEmail(input.Email)
	if err := validateRegistration(input); err != nil {
		return models.Account{}, err
	}
	return d.create(ctx, input, models.RoleUser, "")
}

func (d *MemoryDirectory) create(ctx context.Context, input RegisterInput, role models.Role, id string) (models.Account, error) {
	hash, err := d.hasher.Hash(input.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}
	if id == "" {
		id = "usr_" + ids.New()
	}

	account := models.Account{
		ID:           id,
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    d.clock().UTC(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[input.Email]; exists {
		return models.Account{}, models.ErrDuplicateAccount
	}
	if d.store != nil {
		if err := d.store.SaveAccount(ctx, account); err != nil {
			return models.Account{}, fmt.Errorf("save account: %w", err)
		}
	}
	d.byID[account.ID] = account
	d.byEmail[input.Email] = account.ID

	d.log.Debug().Str("account_id", account.ID).Str("role", string(role)).Msg("account registered")
	return account, nil
}

func (d *MemoryDirectory) Authenticate(_ context.Context, email, password string) (models.Account, error) {
	d.mu.RLock()
	id, ok := d.byEmail[normalizeEmail(email)]
	account := d.byID[id]
	d.mu.RUnlock()
	if !ok {
		return models.Account{}, models.ErrInvalidCredentials
	}

	match, err := d.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		d.log.Error().Err(err).Str("account_id", account.ID).Msg("verify password failed")
		return models.Account{}, models.ErrInvalidCredentials
	}
	if !match {
		return models.Account{}, models.ErrInvalidCredentials
	}
	return account, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (models.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.byID[id]
	if !ok {
		return models.Account{}, models.NewNotFoundError("account", id)
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(input RegisterInput) error {
	nameLen := utf8.RuneCountInString(input.DisplayName)
	if nameLen < minNameLen {
		return models.NewValidationError("name", "Name must be at least 2 characters")
	}
	if nameLen > maxNameLen {
		return models.NewValidationError("name", "Name is too long")
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return models.NewValidationError("email", "Please enter a valid email")
	}
	if len(input.Password) < minPasswordLen {
		return models.NewValidationError("password", "Password must be at least 6 characters")
	}
	return nil
}
