package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/auth"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
	"github.com/jhoicas/taller-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() (*auth.AuthUseCase, *memory.Store) {
	store := memory.New()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "taller-api"}), store
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@taller.co", auth.NormalizeEmail("  Ana@Taller.CO "))
}

func TestRegister_RolUserYToken(t *testing.T) {
	uc, store := newAuth()
	out, err := uc.Register(context.Background(), dto.RegisterRequest{Name: "Ana", Email: " ANA@taller.co", Password: "secreta"})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, out.User.Role)
	assert.Equal(t, "ana@taller.co", out.User.Email)

	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, userID)
	assert.Equal(t, entity.RoleUser, role)

	u, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, "secreta", u.PasswordHash)
}

func TestRegister_EmailDuplicadoSinDistinguirMayusculas(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@taller.co", Password: "x"})
	require.NoError(t, err)

	_, err = uc.Register(ctx, dto.RegisterRequest{Name: "Otra", Email: "ANA@Taller.co", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_CamposFaltantes(t *testing.T) {
	uc, _ := newAuth()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@taller.co", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestLogin(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.Register(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@taller.co", Password: "secreta"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "Ana@Taller.co", Password: "secreta"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Ana", out.User.Name)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@taller.co", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@taller.co", Password: "secreta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
