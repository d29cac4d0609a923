package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sweetshop/internal/ledger"
	"sweetshop/internal/models"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

var _ ledger.Store = (*ItemRepository)(nil)

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// SaveItem inserts or overwrites the row for item.ID. Insertion order is kept
// in seq, which an update does not touch.
func (r *ItemRepository) SaveItem(ctx context.Context, item models.Item) error {
	const query = `
		INSERT INTO items (
			id, name, category, price, quantity, description, image_ref, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4::numeric, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			description = EXCLUDED.description,
			image_ref = EXCLUDED.image_ref,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Name,
		string(item.Category),
		item.Price.String(),
		item.Quantity,
		item.Description,
		item.ImageRef,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}
	return nil
}

func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	const query = `DELETE FROM items WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (r *ItemRepository) LoadItems(ctx context.Context) ([]models.Item, error) {
	const query = `
		SELECT id, name, category, price::text, quantity, description, image_ref, created_at, updated_at
		FROM items ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var (
			item     models.Item
			category string
			price    string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&category,
			&price,
			&item.Quantity,
			&item.Description,
			&item.ImageRef,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Category = models.Category(category)
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("item %s price %q: %w", item.ID, price, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
