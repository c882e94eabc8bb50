package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/entity"
)

// AppointmentFilter restringe un listado de citas. Campos vacíos no filtran.
type AppointmentFilter struct {
	UserID   string
	Statuses []string
}

// AppointmentRepository define el puerto de persistencia para Appointment (DIP).
type AppointmentRepository interface {
	Create(ctx context.Context, a *entity.Appointment) error
	GetByID(ctx context.Context, id string) (*entity.Appointment, error)
	Update(ctx context.Context, a *entity.Appointment) error
	// UpdateStatus cambia solo el estado (una actualización atómica de un documento).
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	// List devuelve las citas con email del dueño y nombres de repuestos resueltos, ordenadas por ScheduledAt.
	List(ctx context.Context, f AppointmentFilter) ([]*entity.AppointmentDetail, error)
	// ExpireOverdue marca como expired, en una sola actualización masiva condicional,
	// toda cita scheduled con ScheduledAt <= now. Devuelve cuántas cambiaron.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
