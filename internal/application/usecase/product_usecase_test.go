package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

func newProducts() *usecase.ProductUseCase {
	return usecase.NewProductUseCase(memory.New().Products())
}

func TestProduct_CrearYObtener(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: " Filtro ", Price: decimal.RequireFromString("12.50"), Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Filtro", created.Name)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	assert.Equal(t, 4, got.Stock)
}

func TestProduct_CrearInvalido(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "x", Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_ActualizarParcial(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()
	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Filtro", Price: decimal.NewFromInt(10), Stock: 4})
	require.NoError(t, err)

	stock := 9
	out, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, out.Stock)
	assert.Equal(t, "Filtro", out.Name)

	negative := -1
	_, err = uc.Update(ctx, created.ID, dto.UpdateProductRequest{Stock: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "no-existe", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProduct_ListarYEliminar(t *testing.T) {
	uc := newProducts()
	ctx := context.Background()
	first, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Primero", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Segundo", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, uc.Delete(ctx, first.ID))
	assert.ErrorIs(t, uc.Delete(ctx, first.ID), domain.ErrProductNotFound)

	_, err = uc.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
