package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
)

var sweepNow = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

func past() time.Time   { return sweepNow.Add(-time.Hour) }
func future() time.Time { return sweepNow.Add(time.Hour) }

func repositoryAll() repository.AppointmentFilter { return repository.AppointmentFilter{} }

// seed inserta una cita directamente en el store, sin pasar por las reglas de agenda.
func seed(t *testing.T, store *memory.Store, id, owner, status string, at time.Time) {
	t.Helper()
	require.NoError(t, store.Appointments().Create(context.Background(), &entity.Appointment{
		ID:           id,
		UserID:       owner,
		CustomerName: "Cliente " + id,
		Phone:        "300",
		Service:      "revisión",
		Date:         at.Format("2006-01-02"),
		Hour:         at.Format("15:04"),
		ScheduledAt:  at,
		Status:       status,
		CreatedAt:    at.Add(-24 * time.Hour),
	}))
}

func statusOf(t *testing.T, store *memory.Store, id string) string {
	t.Helper()
	a, err := store.Appointments().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a.Status
}
