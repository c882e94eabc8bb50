package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

func TestUser_GetByID(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: "u1", Email: "ana@taller.co", Name: "Ana", PasswordHash: "x", Role: entity.RoleUser, CreatedAt: time.Now(),
	}))
	uc := usecase.NewUserUseCase(store.Users())

	got, err := uc.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana@taller.co", got.Email)
	assert.Equal(t, entity.RoleUser, got.Role)

	_, err = uc.GetByID(ctx, "borrado")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
