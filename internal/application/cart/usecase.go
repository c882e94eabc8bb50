package cart

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// CheckoutMessage mensaje de una compra exitosa.
const CheckoutMessage = "Compra finalizada correctamente"

// UseCase coordina el carrito de cada usuario y el checkout que consume stock.
// Cada mutación del carrito se valida contra el stock vigente del producto.
type UseCase struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	tx       TxRunner
	metrics  CheckoutRecorder
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(carts repository.CartRepository, products repository.ProductRepository, tx TxRunner, metrics CheckoutRecorder) *UseCase {
	return &UseCase{carts: carts, products: products, tx: tx, metrics: metrics}
}

// CoerceQuantity interpreta la cantidad recibida: ausente vale 1; presente debe ser
// un entero positivo.
func CoerceQuantity(q *float64) (int, error) {
	if q == nil {
		return 1, nil
	}
	v := *q
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, domain.ErrInvalidQuantity
	}
	return int(v), nil
}

// GetCart devuelve el carrito del usuario, creándolo si no existe y descartando
// las líneas de productos eliminados.
func (uc *UseCase) GetCart(ctx context.Context, userID string) (*dto.CartResponse, error) {
	c, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

// AddItem agrega quantity unidades del producto, sin superar su stock.
func (uc *UseCase) AddItem(ctx context.Context, userID string, in dto.AddCartItemRequest) (*dto.CartResponse, error) {
	qty, err := CoerceQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.ErrMissingFields
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if product.Stock <= 0 {
		return nil, domain.ErrOutOfStock
	}

	c, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := c.Find(productID); i >= 0 {
		if c.Items[i].Quantity+qty > product.Stock {
			return nil, stockExceeded(product.Stock)
		}
		c.Items[i].Quantity += qty
		c.Items[i].Product = product
	} else {
		if qty > product.Stock {
			return nil, stockExceeded(product.Stock)
		}
		c.Items = append(c.Items, entity.CartItem{ProductID: productID, Quantity: qty, Product: product})
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return view(c), nil
}

// RemoveItem quita la línea completa del producto.
func (uc *UseCase) RemoveItem(ctx context.Context, userID, productID string) (*dto.CartResponse, error) {
	c, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.Remove(productID) {
		return nil, domain.ErrItemNotFound
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return view(c), nil
}

// ChangeQuantity suma o resta una unidad. Si la cantidad llega a 0 la línea se elimina.
func (uc *UseCase) ChangeQuantity(ctx context.Context, userID, productID string, delta int) (*dto.CartResponse, error) {
	if delta != 1 && delta != -1 {
		return nil, domain.ErrInvalidDelta
	}
	c, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := c.Find(productID)
	if i < 0 {
		return nil, domain.ErrItemNotFound
	}
	item := &c.Items[i]
	if delta > 0 && item.Quantity+1 > item.Product.Stock {
		return nil, stockExceeded(item.Product.Stock)
	}
	item.Quantity += delta
	if item.Quantity <= 0 {
		c.Remove(productID)
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return view(c), nil
}

type checkoutLine struct {
	product  *entity.Product
	quantity int
}

// Checkout compra todo el carrito dentro de una transacción: primero bloquea y valida
// cada producto, después descuenta el stock y vacía el carrito. Si algún producto no
// alcanza no se descuenta nada.
func (uc *UseCase) Checkout(ctx context.Context, userID string) (*dto.CheckoutResponse, error) {
	start := time.Now()
	total, err := uc.checkout(ctx, userID)
	if uc.metrics != nil {
		uc.metrics.RecordCheckout(total, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutResponse{Message: CheckoutMessage, Total: total}, nil
}

func (uc *UseCase) checkout(ctx context.Context, userID string) (decimal.Decimal, error) {
	// La limpieza de huérfanos se guarda aunque la compra termine en carrito vacío.
	c, err := uc.load(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(c.Items) == 0 {
		return decimal.Zero, domain.ErrEmptyCart
	}

	var total decimal.Decimal
	err = uc.tx.RunCheckout(ctx, func(products repository.ProductRepository, carts repository.CartRepository) error {
		c, err := carts.Get(ctx, userID)
		if err != nil {
			return err
		}
		if c == nil || len(c.Items) == 0 {
			return domain.ErrEmptyCart
		}

		// Orden fijo de bloqueo para que dos compras concurrentes no se crucen.
		items := append([]entity.CartItem(nil), c.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		lines := make([]checkoutLine, 0, len(items))
		sum := decimal.Zero
		for _, it := range items {
			p, err := products.GetForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				continue
			}
			if p.Stock < it.Quantity {
				return fmt.Errorf("%w de %s", domain.ErrInsufficientStock, p.Name)
			}
			lines = append(lines, checkoutLine{product: p, quantity: it.Quantity})
			sum = sum.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		for _, l := range lines {
			ok, err := products.DecrementStock(ctx, l.product.ID, l.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w de %s", domain.ErrInsufficientStock, l.product.Name)
			}
		}

		c.Items = nil
		c.UpdatedAt = time.Now()
		if err := carts.Save(ctx, c); err != nil {
			return err
		}
		total = sum
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// load obtiene o crea el carrito y descarta líneas huérfanas, persistiendo si cambió.
func (uc *UseCase) load(ctx context.Context, userID string) (*entity.Cart, error) {
	c, err := uc.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &entity.Cart{UserID: userID, UpdatedAt: time.Now()}
		if err := uc.carts.Save(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if c.PruneOrphans() {
		if err := uc.save(ctx, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (uc *UseCase) save(ctx context.Context, c *entity.Cart) error {
	c.UpdatedAt = time.Now()
	return uc.carts.Save(ctx, c)
}

func stockExceeded(available int) error {
	return fmt.Errorf("%w. Stock disponible: %d", domain.ErrStockExceeded, available)
}

func view(c *entity.Cart) *dto.CartResponse {
	out := &dto.CartResponse{UserID: c.UserID, Items: make([]dto.CartItemResponse, 0, len(c.Items)), Total: decimal.Zero}
	for _, it := range c.Items {
		if it.Product == nil {
			continue
		}
		subtotal := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		out.Items = append(out.Items, dto.CartItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product:   usecase.ToProductResponse(it.Product),
			Subtotal:  subtotal,
		})
		out.Total = out.Total.Add(subtotal)
	}
	return out
}
