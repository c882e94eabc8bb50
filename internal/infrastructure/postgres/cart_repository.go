package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación del puerto CartRepository sobre PostgreSQL (carts + cart_items).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador de persistencia para carritos. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// Get devuelve el carrito con los productos resueltos; las líneas huérfanas quedan con Product nil.
func (r *CartRepo) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	c := &entity.Cart{UserID: userID}
	err := r.q.QueryRow(ctx, `SELECT updated_at FROM carts WHERE user_id = $1`, userID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT ci.product_id, ci.quantity,
			p.id, p.name, p.description, p.image, p.price, p.stock, p.created_at, p.updated_at
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it                   entity.CartItem
			id, name, desc, img  *string
			price                decimal.NullDecimal
			stock                *int
			createdAt, updatedAt *time.Time
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &id, &name, &desc, &img, &price, &stock, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if id != nil {
			it.Product = &entity.Product{
				ID: *id, Name: *name, Description: *desc, Image: *img,
				Price: price.Decimal, Stock: *stock, CreatedAt: *createdAt, UpdatedAt: *updatedAt,
			}
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	return c, nil
}

// Save reemplaza las líneas del carrito en una transacción (o savepoint si ya hay una abierta).
func (r *CartRepo) Save(ctx context.Context, c *entity.Cart) error {
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO carts (user_id, updated_at) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
			c.UserID, updatedAt)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, c.UserID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if len(c.Items) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for i, it := range c.Items {
			batch.Queue(`INSERT INTO cart_items (user_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
				c.UserID, it.ProductID, it.Quantity, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert cart items: %w", err)
		}
		return nil
	})
}
