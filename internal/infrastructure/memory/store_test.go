package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var errCheckoutFailed = errors.New("fallo en checkout")

func seedProduct(t *testing.T, store *memory.Store, id string, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: id, Price: decimal.NewFromInt(10), Stock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func stockOf(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// blockedCheckout lanza un RunCheckout que descuenta 2 de "filtro", vacía el carrito de ana
// y se detiene hasta que se cierre release; entonces falla. Devuelve cuándo está detenido y su error.
func blockedCheckout(store *memory.Store, release <-chan struct{}) (<-chan struct{}, <-chan error) {
	ctx := context.Background()
	paused := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.RunCheckout(ctx, func(products repository.ProductRepository, carts repository.CartRepository) error {
			ok, err := products.DecrementStock(ctx, "filtro", 2)
			if err != nil || !ok {
				close(paused)
				return errors.New("decremento inesperado")
			}
			if err := carts.Save(ctx, &entity.Cart{UserID: "ana"}); err != nil {
				close(paused)
				return err
			}
			close(paused)
			<-release
			return errCheckoutFailed
		})
	}()
	return paused, done
}

func seedCheckout(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	seedProduct(t, store, "filtro", 5)
	seedProduct(t, store, "aceite", 5)
	require.NoError(t, store.Carts().Save(context.Background(), &entity.Cart{
		UserID: "ana", Items: []entity.CartItem{{ProductID: "filtro", Quantity: 2}},
	}))
	return store
}

// ──────────────────────────────────────────────────────────────────────────────
// RunCheckout
// ──────────────────────────────────────────────────────────────────────────────

func TestRunCheckout_FalloRevierteSoloLoQueEscribio(t *testing.T) {
	store := seedCheckout(t)
	ctx := context.Background()
	release := make(chan struct{})
	paused, done := blockedCheckout(store, release)
	<-paused

	// Escrituras de otras peticiones mientras la compra sigue abierta.
	aceite, err := store.Products().GetByID(ctx, "aceite")
	require.NoError(t, err)
	aceite.Stock = 50
	require.NoError(t, store.Products().Update(ctx, aceite))
	require.NoError(t, store.Carts().Save(ctx, &entity.Cart{
		UserID: "luis", Items: []entity.CartItem{{ProductID: "aceite", Quantity: 1}},
	}))

	close(release)
	assert.ErrorIs(t, <-done, errCheckoutFailed)

	assert.Equal(t, 5, stockOf(t, store, "filtro"), "el descuento de la compra fallida se deshace")
	assert.Equal(t, 50, stockOf(t, store, "aceite"), "la edición del admin se conserva")

	anaCart, err := store.Carts().Get(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, anaCart)
	assert.Len(t, anaCart.Items, 1)

	luisCart, err := store.Carts().Get(ctx, "luis")
	require.NoError(t, err)
	require.NotNil(t, luisCart, "el carrito de otro usuario se conserva")
	assert.Len(t, luisCart.Items, 1)
}

func TestRunCheckout_FalloNoPisaEscrituraPosteriorDelMismoProducto(t *testing.T) {
	store := seedCheckout(t)
	ctx := context.Background()
	release := make(chan struct{})
	paused, done := blockedCheckout(store, release)
	<-paused

	filtro, err := store.Products().GetByID(ctx, "filtro")
	require.NoError(t, err)
	filtro.Stock = 40
	require.NoError(t, store.Products().Update(ctx, filtro))

	close(release)
	assert.ErrorIs(t, <-done, errCheckoutFailed)
	assert.Equal(t, 40, stockOf(t, store, "filtro"))
}

func TestRunCheckout_FalloDeshaceVariasEscriturasDelMismoProducto(t *testing.T) {
	store := seedCheckout(t)
	ctx := context.Background()

	err := store.RunCheckout(ctx, func(products repository.ProductRepository, _ repository.CartRepository) error {
		for i := 0; i < 2; i++ {
			ok, err := products.DecrementStock(ctx, "filtro", 2)
			require.NoError(t, err)
			require.True(t, ok)
		}
		return errCheckoutFailed
	})
	assert.ErrorIs(t, err, errCheckoutFailed)
	assert.Equal(t, 5, stockOf(t, store, "filtro"))
}

func TestRunCheckout_ExitoConservaCambios(t *testing.T) {
	store := seedCheckout(t)
	ctx := context.Background()

	err := store.RunCheckout(ctx, func(products repository.ProductRepository, carts repository.CartRepository) error {
		ok, err := products.DecrementStock(ctx, "filtro", 2)
		require.True(t, ok)
		require.NoError(t, err)
		return carts.Save(ctx, &entity.Cart{UserID: "ana"})
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stockOf(t, store, "filtro"))
	c, err := store.Carts().Get(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestRunCheckout_FalloBorraCarritoCreadoEnLaCompra(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.RunCheckout(ctx, func(_ repository.ProductRepository, carts repository.CartRepository) error {
		require.NoError(t, carts.Save(ctx, &entity.Cart{UserID: "nuevo"}))
		return errCheckoutFailed
	})
	assert.ErrorIs(t, err, errCheckoutFailed)

	c, err := store.Carts().Get(ctx, "nuevo")
	require.NoError(t, err)
	assert.Nil(t, c)
}
