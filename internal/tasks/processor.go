package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sweetshop/internal/events"
	"sweetshop/internal/queue"
)

// Processor turns stock events into operator alerts.
type Processor struct {
	logger zerolog.Logger

	mu     sync.Mutex
	counts map[events.Type]int
}

func NewProcessor(logger zerolog.Logger) *Processor {
	return &Processor{
		logger: logger,
		counts: make(map[events.Type]int),
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	event, err := events.Decode(msg.Values)
	if err != nil {
		return queue.Permanent(fmt.Errorf("decode payload: %w", err))
	}

	switch event.Type {
	case events.TypePurchase, events.TypeRestock:
		p.handleMovement(ctx, event)
	case events.TypeLowStock:
		p.handleLowStock(ctx, event)
	case events.TypeOutOfStock:
		p.handleOutOfStock(ctx, event)
	default:
		// Unknown types are acked so they do not block the group.
		p.logger.Warn().Str("type", string(event.Type)).Str("message_id", msg.ID).Msg("unknown event type")
		return nil
	}

	p.mu.Lock()
	p.counts[event.Type]++
	p.mu.Unlock()
	return nil
}

// Count reports how many events of type t were handled.
func (p *Processor) Count(t events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[t]
}

func (p *Processor) handleMovement(_ context.Context, e events.StockEvent) {
	p.logger.Debug().
		Str("item_id", e.ItemID).
		Str("type", string(e.Type)).
		Int("delta", e.Delta).
		Int("quantity", e.Quantity).
		Msg("stock moved")
}

func (p *Processor) handleLowStock(_ context.Context, e events.StockEvent) {
	p.logger.Warn().
		Str("item_id", e.ItemID).
		Str("name", e.Name).
		Int("quantity", e.Quantity).
		Msg("low stock")
}

func (p *Processor) handleOutOfStock(_ context.Context, e events.StockEvent) {
	p.logger.Error().
		Str("item_id", e.ItemID).
		Str("name", e.Name).
		Msg("out of stock")
}
