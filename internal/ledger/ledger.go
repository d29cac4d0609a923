// Package ledger owns the item catalog and every stock-changing operation.
//
// Each item sits behind its own mutex, so mutations on one id serialize while
// mutations on other ids run in parallel. The committed state of an item is an
// immutable snapshot swapped in only after the store accepted the write, so
// readers never wait on a mutation or on store I/O. The index lock only guards
// map and ordering changes.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"sweetshop/internal/ids"
	"sweetshop/internal/models"
)

// Store persists items behind the ledger. Writes happen while the item is
// locked and before the in-memory state changes, so a failed write leaves the
// ledger untouched.
type Store interface {
	SaveItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, id string) error
	LoadItems(ctx context.Context) ([]models.Item, error)
}

// entry serializes writers on mu; readers only load current.
type entry struct {
	mu      sync.Mutex
	current atomic.Pointer[models.Item]
	removed atomic.Bool
}

func newEntry(item models.Item) *entry {
	e := &entry{}
	e.current.Store(&item)
	return e
}

// snapshot returns a copy of the committed item, or false once deleted.
func (e *entry) snapshot() (models.Item, bool) {
	if e.removed.Load() {
		return models.Item{}, false
	}
	return cloneItem(*e.current.Load()), true
}

type Option func(*Ledger)

func WithStore(store Store) Option {
	return func(l *Ledger) { l.store = store }
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithStarterCatalog seeds the starter sweets when the ledger would otherwise start empty.
func WithStarterCatalog() Option {
	return func(l *Ledger) { l.seed = true }
}

type Ledger struct {
	mu    sync.RWMutex
	index map[string]*entry
	order []*entry

	store Store
	clock func() time.Time
	seed  bool
	log   zerolog.Logger
}

func New(ctx context.Context, log zerolog.Logger, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		index: make(map[string]*entry),
		clock: time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.store != nil {
		items, err := l.store.LoadItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("load items: %w", err)
		}
		for _, item := range items {
			l.insert(item)
		}
	}

	if l.seed && len(l.order) == 0 {
		for _, spec := range StarterCatalog() {
			if _, err := l.Create(ctx, spec); err != nil {
				return nil, fmt.Errorf("seed %q: %w", spec.Name, err)
			}
		}
	}
	return l, nil
}

func (l *Ledger) Create(ctx context.Context, spec models.ItemSpec) (models.Item, error) {
	spec, err := validateSpec(spec)
	if err != nil {
		return models.Item{}, err
	}

	now := l.now()
	item := models.Item{
		ID:          ids.New(),
		Name:        spec.Name,
		Category:    spec.Category,
		Price:       spec.Price,
		Quantity:    spec.Quantity,
		Description: cloneString(spec.Description),
		ImageRef:    cloneString(spec.ImageRef),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if l.store != nil {
		if err := l.store.SaveItem(ctx, item); err != nil {
			return models.Item{}, fmt.Errorf("save item: %w", err)
		}
	}
	l.insert(item)

	l.log.Debug().Str("item_id", item.ID).Str("name", item.Name).Msg("item created")
	return cloneItem(item), nil
}

func (l *Ledger) Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	return l.mutate(ctx, id, func(item models.Item) (models.Item, error) {
		return applyPatch(item, patch)
	})
}

// Purchase takes qty units off the item's stock, failing with OutOfStockError
// when fewer than qty remain.
func (l *Ledger) Purchase(ctx context.Context, id string, qty int) (models.Item, error) {
	if qty < 1 {
		return models.Item{}, models.NewValidationError("quantity", "Quantity must be at least 1")
	}
	item, err := l.mutate(ctx, id, func(item models.Item) (models.Item, error) {
		if item.Quantity < qty {
			return models.Item{}, &models.OutOfStockError{Available: item.Quantity}
		}
		item.Quantity -= qty
		return item, nil
	})
	if err != nil {
		return models.Item{}, err
	}
	l.log.Debug().Str("item_id", id).Int("qty", qty).Int("remaining", item.Quantity).Msg("item purchased")
	return item, nil
}

func (l *Ledger) Restock(ctx context.Context, id string, qty int) (models.Item, error) {
	if qty <= 0 {
		return models.Item{}, models.NewValidationError("quantity", "Quantity must be greater than 0")
	}
	item, err := l.mutate(ctx, id, func(item models.Item) (models.Item, error) {
		if item.Quantity > math.MaxInt-qty {
			return models.Item{}, models.NewValidationError("quantity", "Quantity is too large")
		}
		item.Quantity += qty
		return item, nil
	})
	if err != nil {
		return models.Item{}, err
	}
	l.log.Debug().Str("item_id", id).Int("qty", qty).Int("quantity", item.Quantity).Msg("item restocked")
	return item, nil
}

func (l *Ledger) Delete(ctx context.Context, id string) error {
	e, ok := l.lookup(id)
	if !ok {
		return models.NewNotFoundError("item", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return models.NewNotFoundError("item", id)
	}
	if l.store != nil {
		if err := l.store.DeleteItem(ctx, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
	}
	e.removed.Store(true)

	l.mu.Lock()
	delete(l.index, id)
	for i, candidate := range l.order {
		if candidate == e {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	l.log.Debug().Str("item_id", id).Msg("item deleted")
	return nil
}

func (l *Ledger) Get(_ context.Context, id string) (models.Item, error) {
	e, ok := l.lookup(id)
	if !ok {
		return models.Item{}, models.NewNotFoundError("item", id)
	}

	item, ok := e.snapshot()
	if !ok {
		return models.Item{}, models.NewNotFoundError("item", id)
	}
	return item, nil
}

// List returns every item in insertion order. Each item is a committed
// snapshot, so it reflects a whole mutation or none of it.
func (l *Ledger) List(_ context.Context) []models.Item {
	l.mu.RLock()
	entries := make([]*entry, len(l.order))
	copy(entries, l.order)
	l.mu.RUnlock()

	items := make([]models.Item, 0, len(entries))
	for _, e := range entries {
		if item, ok := e.snapshot(); ok {
			items = append(items, item)
		}
	}
	return items
}

func (l *Ledger) mutate(ctx context.Context, id string, fn func(models.Item) (models.Item, error)) (models.Item, error) {
	e, ok := l.lookup(id)
	if !ok {
		return models.Item{}, models.NewNotFoundError("item", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return models.Item{}, models.NewNotFoundError("item", id)
	}

	next, err := fn(cloneItem(*e.current.Load()))
	if err != nil {
		return models.Item{}, err
	}
	next.UpdatedAt = l.now()

	if l.store != nil {
		if err := l.store.SaveItem(ctx, next); err != nil {
			return models.Item{}, fmt.Errorf("save item: %w", err)
		}
	}
	committed := cloneItem(next)
	e.current.Store(&committed)
	return next, nil
}

func (l *Ledger) lookup(id string) (*entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.index[id]
	return e, ok
}

func (l *Ledger) insert(item models.Item) {
	e := newEntry(cloneItem(item))
	l.mu.Lock()
	l.index[item.ID] = e
	l.order = append(l.order, e)
	l.mu.Unlock()
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC()
}

func cloneItem(item models.Item) models.Item {
	item.Description = cloneString(item.Description)
	item.ImageRef = cloneString(item.ImageRef)
	return item
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
