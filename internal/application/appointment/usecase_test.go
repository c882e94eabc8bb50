package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/application/appointment"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/schedule"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	ana   = entity.Actor{UserID: "user-ana", Role: entity.RoleUser}
	luis  = entity.Actor{UserID: "user-luis", Role: entity.RoleUser}
	admin = entity.Actor{UserID: "user-admin", Role: entity.RoleAdmin}
)

func setup(t *testing.T) (*appointment.UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	for _, u := range []entity.User{
		{ID: ana.UserID, Email: "ana@taller.co", Role: entity.RoleUser},
		{ID: luis.UserID, Email: "luis@taller.co", Role: entity.RoleUser},
		{ID: admin.UserID, Email: "admin@taller.co", Role: entity.RoleAdmin},
	} {
		u := u
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	uc := appointment.NewUseCase(store.Appointments(), store.Products(), store.Users(), schedule.DefaultRules(time.UTC))
	return uc, store
}

func request(date, hour string) dto.CreateAppointmentRequest {
	return dto.CreateAppointmentRequest{
		Name:    "Ana Gómez",
		Phone:   "3001234567",
		Service: "cambio de aceite",
		Date:    date,
		Hour:    hour,
	}
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_LunesNueveAM(t *testing.T) {
	uc, _ := setup(t)
	out, err := uc.Create(context.Background(), ana, request("2025-06-16", "09:00"))
	require.NoError(t, err)

	assert.Equal(t, entity.AppointmentScheduled, out.Status)
	assert.Equal(t, ana.UserID, out.UserID)
	assert.Equal(t, time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC), out.ScheduledAt)
}

func TestCreate_ErroresDeAgenda(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, ana, request("2025-06-16", "08:30"))
	assert.ErrorIs(t, err, domain.ErrOutsideBusinessHours)

	_, err = uc.Create(ctx, ana, request("2025-06-16", "09:15"))
	assert.ErrorIs(t, err, domain.ErrInvalidSlotGranularity)

	_, err = uc.Create(ctx, ana, request("2025-06-15", "10:00"))
	assert.ErrorIs(t, err, domain.ErrClosedDay)

	list, err := store.Appointments().List(ctx, repositoryAll())
	require.NoError(t, err)
	assert.Empty(t, list, "una cita inválida no debe persistirse")
}

func TestCreate_CamposFaltantes(t *testing.T) {
	uc, _ := setup(t)
	in := request("2025-06-16", "10:00")
	in.Phone = "   "
	_, err := uc.Create(context.Background(), ana, in)
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestCreate_FechaDDMMYYYYSeNormaliza(t *testing.T) {
	uc, _ := setup(t)
	out, err := uc.Create(context.Background(), ana, request("16/06/2025", "14:30"))
	require.NoError(t, err)

	assert.Equal(t, "2025-06-16", out.Date)
	assert.Equal(t, time.Date(2025, 6, 16, 14, 30, 0, 0, time.UTC), out.ScheduledAt)
}

func TestCreate_AdminAgendaANombreDeOtro(t *testing.T) {
	uc, _ := setup(t)
	in := request("2025-06-16", "10:00")
	in.UserID = ana.UserID

	out, err := uc.Create(context.Background(), admin, in)
	require.NoError(t, err)
	assert.Equal(t, ana.UserID, out.UserID)

	in.UserID = luis.UserID
	out, err = uc.Create(context.Background(), ana, in)
	require.NoError(t, err)
	assert.Equal(t, ana.UserID, out.UserID, "un usuario no puede agendar a nombre de otro")
}

func TestCreate_AdminANombreDeUsuarioInexistente(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	in := request("2025-06-16", "10:00")
	in.UserID = "user-fantasma"

	_, err := uc.Create(ctx, admin, in)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := store.Appointments().List(ctx, repositoryAll())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_HoraSeGuardaCanonica(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, ana, request("2025-06-16", "9:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", out.Hour)

	stored, err := store.Appointments().GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.Hour)

	updated, err := uc.Update(ctx, ana, out.ID, dto.UpdateAppointmentRequest{Hour: strPtr("9:30")})
	require.NoError(t, err)
	assert.Equal(t, "09:30", updated.Hour)
}

func TestCreate_RepuestoInexistente(t *testing.T) {
	uc, _ := setup(t)
	in := request("2025-06-16", "10:00")
	in.Parts = []string{"no-existe"}
	_, err := uc.Create(context.Background(), ana, in)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// List / History
// ──────────────────────────────────────────────────────────────────────────────

func TestList_UsuarioVeSoloLasSuyasAdminTodas(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	filtro := &entity.Product{ID: "p-filtro", Name: "Filtro de aceite", Price: decimal.NewFromInt(10), Stock: 3}
	require.NoError(t, store.Products().Create(ctx, filtro))

	in := request("2025-06-16", "10:00")
	in.Parts = []string{filtro.ID}
	_, err := uc.Create(ctx, ana, in)
	require.NoError(t, err)
	_, err = uc.Create(ctx, luis, request("2025-06-17", "11:00"))
	require.NoError(t, err)

	mine, err := uc.List(ctx, ana)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ana.UserID, mine[0].UserID)
	assert.Empty(t, mine[0].UserEmail, "el email del dueño solo se expone al admin")
	require.Len(t, mine[0].Parts, 1)
	assert.Equal(t, "Filtro de aceite", mine[0].Parts[0].Name)

	all, err := uc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ana@taller.co", all[0].UserEmail)
	assert.Equal(t, "luis@taller.co", all[1].UserEmail)
}

func TestListHistory_SoloAdmin(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	seed(t, store, "a1", ana.UserID, entity.AppointmentArrived, past())
	seed(t, store, "a2", ana.UserID, entity.AppointmentExpired, past())
	seed(t, store, "a3", ana.UserID, entity.AppointmentScheduled, future())
	seed(t, store, "a4", ana.UserID, entity.AppointmentCancelled, past())

	_, err := uc.ListHistory(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	history, err := uc.ListHistory(ctx, admin)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, a := range history {
		assert.Contains(t, []string{entity.AppointmentArrived, entity.AppointmentExpired}, a.Status)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Arrive / Cancel / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_RevalidaHoraConFechaExistente(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	created, err := uc.Create(ctx, ana, request("2025-06-16", "10:00"))
	require.NoError(t, err)

	out, err := uc.Update(ctx, ana, created.ID, dto.UpdateAppointmentRequest{Hour: strPtr("15:30")})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 16, 15, 30, 0, 0, time.UTC), out.ScheduledAt)

	_, err = uc.Update(ctx, ana, created.ID, dto.UpdateAppointmentRequest{Hour: strPtr("15:45")})
	assert.ErrorIs(t, err, domain.ErrInvalidSlotGranularity)

	_, err = uc.Update(ctx, ana, created.ID, dto.UpdateAppointmentRequest{Date: strPtr("2025-06-22")})
	assert.ErrorIs(t, err, domain.ErrClosedDay)

	list, err := uc.List(ctx, ana)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "15:30", list[0].Hour, "una edición rechazada no debe persistirse")
}

func TestUpdate_SoloCamposSinReagendar(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	created, err := uc.Create(ctx, ana, request("2025-06-16", "10:00"))
	require.NoError(t, err)

	out, err := uc.Update(ctx, admin, created.ID, dto.UpdateAppointmentRequest{Service: strPtr("alineación")})
	require.NoError(t, err)
	assert.Equal(t, "alineación", out.Service)
	assert.Equal(t, created.ScheduledAt, out.ScheduledAt)
}

func TestUpdate_NoEncontrada(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Update(context.Background(), admin, "no-existe", dto.UpdateAppointmentRequest{})
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestNoDueno_Forbidden(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	created, err := uc.Create(ctx, ana, request("2025-06-16", "10:00"))
	require.NoError(t, err)

	_, err = uc.Update(ctx, luis, created.ID, dto.UpdateAppointmentRequest{Service: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.MarkArrived(ctx, luis, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Cancel(ctx, luis, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = uc.Delete(ctx, luis, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := uc.List(ctx, ana)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, entity.AppointmentScheduled, mine[0].Status)
}

func TestMarkArrived_Idempotente(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	seed(t, store, "exp", ana.UserID, entity.AppointmentExpired, past())

	for i := 0; i < 2; i++ {
		out, err := uc.MarkArrived(ctx, admin, "exp")
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentArrived, out.Status)
	}
	a, err := store.Appointments().GetByID(ctx, "exp")
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentArrived, a.Status)
}

func TestCancel_SoloDesdeScheduled(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	seed(t, store, "s", ana.UserID, entity.AppointmentScheduled, future())
	seed(t, store, "arr", ana.UserID, entity.AppointmentArrived, past())

	out, err := uc.Cancel(ctx, ana, "s")
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentCancelled, out.Status)

	_, err = uc.Cancel(ctx, ana, "s")
	assert.NoError(t, err, "cancelar dos veces no es error")

	_, err = uc.Cancel(ctx, ana, "arr")
	assert.ErrorIs(t, err, domain.ErrAppointmentClosed)
}

func TestDelete_DuenoYAdmin(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()
	seed(t, store, "x1", ana.UserID, entity.AppointmentScheduled, future())
	seed(t, store, "x2", ana.UserID, entity.AppointmentScheduled, future())

	require.NoError(t, uc.Delete(ctx, ana, "x1"))
	require.NoError(t, uc.Delete(ctx, admin, "x2"))

	err := uc.Delete(ctx, ana, "x1")
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}
