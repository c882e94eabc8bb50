package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
)

var _ repository.AppointmentRepository = (*AppointmentRepo)(nil)

const appointmentColumns = `a.id, a.user_id, a.customer_name, a.phone, a.service, a.appointment_date,
	a.appointment_hour, a.scheduled_at, a.status, a.parts, a.created_at, a.updated_at`

// AppointmentRepo implementación del puerto AppointmentRepository sobre PostgreSQL.
type AppointmentRepo struct {
	q Querier
}

// NewAppointmentRepository construye el adaptador de persistencia para citas.
func NewAppointmentRepository(q Querier) *AppointmentRepo {
	return &AppointmentRepo{q: q}
}

// Create persiste una cita nueva.
func (r *AppointmentRepo) Create(ctx context.Context, a *entity.Appointment) error {
	query := `
		INSERT INTO appointments (id, user_id, customer_name, phone, service, appointment_date,
			appointment_hour, scheduled_at, status, parts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.UserID, a.CustomerName, a.Phone, a.Service, a.Date,
		a.Hour, a.ScheduledAt, a.Status, parts(a.PartIDs), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// GetByID obtiene una cita por ID.
func (r *AppointmentRepo) GetByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var a entity.Appointment
	err := r.q.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = $1`, id).
		Scan(appointmentDest(&a)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

// Update reemplaza los campos editables de la cita.
func (r *AppointmentRepo) Update(ctx context.Context, a *entity.Appointment) error {
	query := `
		UPDATE appointments SET customer_name = $2, phone = $3, service = $4, appointment_date = $5,
			appointment_hour = $6, scheduled_at = $7, status = $8, parts = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CustomerName, a.Phone, a.Service, a.Date, a.Hour, a.ScheduledAt, a.Status, parts(a.PartIDs), a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// UpdateStatus cambia solo el estado.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx, `UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// Delete elimina la cita.
func (r *AppointmentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// List devuelve las citas con el email del dueño y los nombres de repuestos, ordenadas por fecha.
func (r *AppointmentRepo) List(ctx context.Context, f repository.AppointmentFilter) ([]*entity.AppointmentDetail, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		args = append(args, f.Statuses)
		where = append(where, fmt.Sprintf("a.status = ANY($%d)", len(args)))
	}
	query := `SELECT ` + appointmentColumns + `, COALESCE(u.email, '')
		FROM appointments a LEFT JOIN users u ON u.id = a.user_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.scheduled_at ASC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var (
		list    []*entity.AppointmentDetail
		partIDs []string
	)
	for rows.Next() {
		d := &entity.AppointmentDetail{}
		dest := append(appointmentDest(&d.Appointment), &d.OwnerEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		partIDs = append(partIDs, d.PartIDs...)
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	names, err := r.partNames(ctx, partIDs)
	if err != nil {
		return nil, err
	}
	for _, d := range list {
		d.PartNames = make(map[string]string, len(d.PartIDs))
		for _, id := range d.PartIDs {
			if n, ok := names[id]; ok {
				d.PartNames[id] = n
			}
		}
	}
	return list, nil
}

func (r *AppointmentRepo) partNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string)
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, name FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve parts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// ExpireOverdue marca expired todas las citas scheduled vencidas en un solo UPDATE condicional.
func (r *AppointmentRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE appointments SET status = $1, updated_at = $3
		WHERE status = $2 AND scheduled_at <= $3`,
		entity.AppointmentExpired, entity.AppointmentScheduled, now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire appointments: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func appointmentDest(a *entity.Appointment) []any {
	return []any{
		&a.ID, &a.UserID, &a.CustomerName, &a.Phone, &a.Service, &a.Date,
		&a.Hour, &a.ScheduledAt, &a.Status, &a.PartIDs, &a.CreatedAt, &a.UpdatedAt,
	}
}

// parts evita insertar NULL en la columna NOT NULL.
func parts(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
