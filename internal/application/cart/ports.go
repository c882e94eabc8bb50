package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio aplicado.
type TxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		products repository.ProductRepository,
		carts repository.CartRepository,
	) error) error
}

// CheckoutRecorder registra el resultado de cada compra (métricas).
type CheckoutRecorder interface {
	RecordCheckout(total decimal.Decimal, duration time.Duration, err error)
}
