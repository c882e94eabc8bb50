package repository

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia para Cart (DIP).
type CartRepository interface {
	// Get devuelve el carrito con los productos resueltos (Product nil si es huérfano),
	// o (nil, nil) si el usuario aún no tiene carrito.
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	// Save reemplaza por completo las líneas del carrito.
	Save(ctx context.Context, cart *entity.Cart) error
}
