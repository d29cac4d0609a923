// Package events publishes stock changes to a Redis stream for the worker.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sweetshop/internal/models"
)

type Type string

const (
	TypePurchase   Type = "purchase"
	TypeRestock    Type = "restock"
	TypeLowStock   Type = "low_stock"
	TypeOutOfStock Type = "out_of_stock"
)

type StockEvent struct {
	Type     Type
	ItemID   string
	Name     string
	Quantity int
	Delta    int
	At       time.Time
}

func NewStockEvent(t Type, item models.Item, delta int) StockEvent {
	return StockEvent{
		Type:     t,
		ItemID:   item.ID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Delta:    delta,
		At:       item.UpdatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event StockEvent) error
}

// Nop drops every event. Used when no Redis is configured.
type Nop struct{}

func (Nop) Publish(context.Context, StockEvent) error { return nil }

type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

func (p *RedisPublisher) Publish(ctx context.Context, event StockEvent) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: Encode(event),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func Encode(e StockEvent) map[string]any {
	return map[string]any{
		"type":     string(e.Type),
		"itemId":   e.ItemID,
		"name":     e.Name,
		"quantity": e.Quantity,
		"delta":    e.Delta,
		"at":       e.At.UTC().Format(time.RFC3339Nano),
	}
}

// Decode rebuilds an event from stream values, which Redis hands back as strings.
func Decode(values map[string]interface{}) (StockEvent, error) {
	get := func(key string) string {
		v, _ := values[key].(string)
		return v
	}

	e := StockEvent{
		Type:   Type(get("type")),
		ItemID: get("itemId"),
		Name:   get("name"),
	}
	if e.Type == "" {
		return StockEvent{}, fmt.Errorf("missing event type")
	}

	var err error
	if e.Quantity, err = strconv.Atoi(get("quantity")); err != nil {
		return StockEvent{}, fmt.Errorf("quantity: %w", err)
	}
	if e.Delta, err = strconv.Atoi(get("delta")); err != nil {
		return StockEvent{}, fmt.Errorf("delta: %w", err)
	}
	if at := get("at"); at != "" {
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return StockEvent{}, fmt.Errorf("at: %w", err)
		}
	}
	return e, nil
}
