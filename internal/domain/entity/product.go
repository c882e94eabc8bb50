package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un repuesto del catálogo de la tienda.
// Stock es un contador entero que nunca debe quedar negativo.
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal // precio de venta
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
