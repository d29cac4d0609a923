package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"sweetshop/internal/catalog"
	"sweetshop/internal/directory"
	"sweetshop/internal/events"
	"sweetshop/internal/gate"
	"sweetshop/internal/models"
)

// Sessions is the part of the session manager the shop calls into.
type Sessions interface {
	Issue(ctx context.Context, accountID string) (models.Session, error)
	Validate(ctx context.Context, token string) (models.Account, error)
	Revoke(ctx context.Context, token string)
}

// Inventory is the ledger as seen by the shop.
type Inventory interface {
	Create(ctx context.Context, spec models.ItemSpec) (models.Item, error)
	Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error)
	Purchase(ctx context.Context, id string, qty int) (models.Item, error)
	Restock(ctx context.Context, id string, qty int) (models.Item, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context) []models.Item
}

type ShopService struct {
	accounts  directory.Directory
	sessions  Sessions
	inventory Inventory
	gate      *gate.Gate
	events    events.Publisher
	lowStock  int
	log       zerolog.Logger
}

type ShopOption func(*ShopService)

// WithEvents publishes stock changes through p.
func WithEvents(p events.Publisher) ShopOption {
	return func(s *ShopService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithLowStockThreshold(n int) ShopOption {
	return func(s *ShopService) {
		if n > 0 {
			s.lowStock = n
		}
	}
}

func NewShopService(
	accounts directory.Directory,
	sessions Sessions,
	inventory Inventory,
	log zerolog.Logger,
	opts ...ShopOption,
) *ShopService {
	s := &ShopService{
		accounts:  accounts,
		sessions:  sessions,
		inventory: inventory,
		gate:      gate.New(sessions, log),
		events:    events.Nop{},
		lowStock:  models.LowStockThreshold,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AuthResult struct {
	Session models.Session
	Account models.Account
}

// Register creates a USER account and signs it in.
func (s *ShopService) Register(ctx context.Context, input directory.RegisterInput) (AuthResult, error) {
	account, err := s.accounts.Register(ctx, input)
	if err != nil {
		return AuthResult{}, err
	}
	return s.signIn(ctx, account)
}

func (s *ShopService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			s.log.Info().Str("email", email).Msg("login rejected")
		}
		return AuthResult{}, err
	}
	return s.signIn(ctx, account)
}

func (s *ShopService) signIn(ctx context.Context, account models.Account) (AuthResult, error) {
	session, err := s.sessions.Issue(ctx, account.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Session: session, Account: account}, nil
}

// Logout is silent for tokens that are unknown or already revoked.
func (s *ShopService) Logout(ctx context.Context, token string) {
	s.sessions.Revoke(ctx, token)
}

func (s *ShopService) CurrentAccount(ctx context.Context, token string) (models.Account, error) {
	return s.gate.Authorize(ctx, token, models.RoleUser)
}

func (s *ShopService) ListItems(ctx context.Context) []models.Item {
	return s.inventory.List(ctx)
}

func (s *ShopService) GetItem(ctx context.Context, id string) (models.Item, error) {
	return s.inventory.Get(ctx, id)
}

func (s *ShopService) SearchItems(ctx context.Context, p catalog.Predicate) []models.Item {
	return catalog.Filter(s.inventory.List(ctx), p)
}

// LowStockItems returns the items that still sell but are at or under the
// low-stock threshold, plus the ones that sold out.
func (s *ShopService) LowStockItems(ctx context.Context) (low, empty []models.Item) {
	for _, item := range s.inventory.List(ctx) {
		switch {
		case !item.InStock():
			empty = append(empty, item)
		case item.LowStock(s.lowStock):
			low = append(low, item)
		}
	}
	return low, empty
}

func (s *ShopService) CreateItem(ctx context.Context, token string, spec models.ItemSpec) (models.Item, error) {
	return gate.Call(ctx, s.gate, token, models.RoleAdmin, func(ctx context.Context, by models.Account) (models.Item, error) {
		item, err := s.inventory.Create(ctx, spec)
		if err != nil {
			return models.Item{}, err
		}
		s.log.Info().Str("item_id", item.ID).Str("by", by.ID).Msg("item created")
		return item, nil
	})
}

func (s *ShopService) UpdateItem(ctx context.Context, token, id string, patch models.ItemPatch) (models.Item, error) {
	return gate.Call(ctx, s.gate, token, models.RoleAdmin, func(ctx context.Context, _ models.Account) (models.Item, error) {
		return s.inventory.Update(ctx, id, patch)
	})
}

func (s *ShopService) DeleteItem(ctx context.Context, token, id string) error {
	_, err := gate.Call(ctx, s.gate, token, models.RoleAdmin, func(ctx context.Context, by models.Account) (struct{}, error) {
		if err := s.inventory.Delete(ctx, id); err != nil {
			return struct{}{}, err
		}
		s.log.Info().Str("item_id", id).Str("by", by.ID).Msg("item deleted")
		return struct{}{}, nil
	})
	return err
}

// PurchaseItem sells qty units to any signed-in account. A qty of zero means one.
func (s *ShopService) PurchaseItem(ctx context.Context, token, id string, qty int) (models.Item, error) {
	if qty == 0 {
		qty = 1
	}
	return gate.Call(ctx, s.gate, token, models.RoleUser, func(ctx context.Context, _ models.Account) (models.Item, error) {
		item, err := s.inventory.Purchase(ctx, id, qty)
		if err != nil {
			return models.Item{}, err
		}
		s.publish(ctx, events.NewStockEvent(events.TypePurchase, item, -qty))
		before := item.Quantity + qty
		switch {
		case !item.InStock():
			s.publish(ctx, events.NewStockEvent(events.TypeOutOfStock, item, -qty))
		case item.LowStock(s.lowStock) && before > s.lowStock:
			s.publish(ctx, events.NewStockEvent(events.TypeLowStock, item, -qty))
		}
		return item, nil
	})
}

func (s *ShopService) RestockItem(ctx context.Context, token, id string, qty int) (models.Item, error) {
	return gate.Call(ctx, s.gate, token, models.RoleAdmin, func(ctx context.Context, _ models.Account) (models.Item, error) {
		item, err := s.inventory.Restock(ctx, id, qty)
		if err != nil {
			return models.Item{}, err
		}
		s.publish(ctx, events.NewStockEvent(events.TypeRestock, item, qty))
		return item, nil
	})
}

// publish never fails the caller; the stock change is already committed.
func (s *ShopService) publish(ctx context.Context, event events.StockEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("item_id", event.ItemID).Str("type", string(event.Type)).Msg("publish stock event failed")
	}
}
