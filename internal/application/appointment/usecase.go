package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/schedule"
)

// historyStatuses estados visibles en el historial.
var historyStatuses = []string{entity.AppointmentExpired, entity.AppointmentArrived}

// UseCase gestiona el ciclo de vida de las citas: agendar, listar, editar,
// marcar llegada, cancelar y eliminar. Autoriza dueño o admin.
type UseCase struct {
	repo     repository.AppointmentRepository
	products repository.ProductRepository
	users    repository.UserRepository
	rules    schedule.Rules
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.AppointmentRepository, products repository.ProductRepository, users repository.UserRepository, rules schedule.Rules) *UseCase {
	return &UseCase{repo: repo, products: products, users: users, rules: rules}
}

// Create agenda una cita nueva en estado scheduled.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	service := strings.TrimSpace(in.Service)
	date := strings.TrimSpace(in.Date)
	hour := strings.TrimSpace(in.Hour)
	if name == "" || phone == "" || service == "" || date == "" || hour == "" {
		return nil, domain.ErrMissingFields
	}

	scheduledAt, err := uc.rules.Validate(date, hour, in.ScheduledAt)
	if err != nil {
		return nil, err
	}
	isoDate, err := schedule.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	hour, err = schedule.NormalizeHour(hour)
	if err != nil {
		return nil, err
	}
	if err := uc.checkParts(ctx, in.Parts); err != nil {
		return nil, err
	}

	owner := actor.UserID
	if actor.IsAdmin() && in.UserID != "" && in.UserID != actor.UserID {
		u, err := uc.users.GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.ErrUserNotFound
		}
		owner = u.ID
	}
	now := time.Now()
	a := &entity.Appointment{
		ID:           uuid.New().String(),
		UserID:       owner,
		CustomerName: name,
		Phone:        phone,
		Service:      service,
		Date:         isoDate,
		Hour:         hour,
		ScheduledAt:  scheduledAt,
		Status:       entity.AppointmentScheduled,
		PartIDs:      in.Parts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	out := toResponse(a)
	return &out, nil
}

// List devuelve todas las citas para un admin (con email del dueño) o solo las propias.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor) ([]dto.AppointmentResponse, error) {
	f := repository.AppointmentFilter{}
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	return uc.list(ctx, actor, f)
}

// ListHistory devuelve las citas expiradas o atendidas. Solo admin.
func (uc *UseCase) ListHistory(ctx context.Context, actor entity.Actor) ([]dto.AppointmentResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.list(ctx, actor, repository.AppointmentFilter{Statuses: historyStatuses})
}

func (uc *UseCase) list(ctx context.Context, actor entity.Actor, f repository.AppointmentFilter) ([]dto.AppointmentResponse, error) {
	details, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AppointmentResponse, 0, len(details))
	for _, d := range details {
		r := toResponse(&d.Appointment)
		if actor.IsAdmin() {
			r.UserEmail = d.OwnerEmail
		}
		r.Parts = partRefs(d.PartIDs, d.PartNames)
		out = append(out, r)
	}
	return out, nil
}

// Update edita los campos presentes. Si cambia la fecha, la hora o el instante,
// se revalida la agenda con los valores efectivos antes de guardar.
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	a, err := uc.fetch(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		a.CustomerName = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		a.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Service != nil {
		a.Service = strings.TrimSpace(*in.Service)
	}
	if a.CustomerName == "" || a.Phone == "" || a.Service == "" {
		return nil, domain.ErrMissingFields
	}

	if in.Date != nil || in.Hour != nil || in.ScheduledAt != nil {
		date, hour := a.Date, a.Hour
		if in.Date != nil {
			date = strings.TrimSpace(*in.Date)
		}
		if in.Hour != nil {
			hour = strings.TrimSpace(*in.Hour)
		}
		if date == "" || hour == "" {
			return nil, domain.ErrMissingFields
		}
		scheduledAt, err := uc.rules.Validate(date, hour, in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		isoDate, err := schedule.NormalizeDate(date)
		if err != nil {
			return nil, err
		}
		isoHour, err := schedule.NormalizeHour(hour)
		if err != nil {
			return nil, err
		}
		a.Date, a.Hour, a.ScheduledAt = isoDate, isoHour, scheduledAt
	}

	if in.Parts != nil {
		if err := uc.checkParts(ctx, *in.Parts); err != nil {
			return nil, err
		}
		a.PartIDs = *in.Parts
	}

	a.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	out := toResponse(a)
	return &out, nil
}

// MarkArrived marca la llegada del cliente. Es idempotente y no exige estado previo.
func (uc *UseCase) MarkArrived(ctx context.Context, actor entity.Actor, id string) (*dto.AppointmentResponse, error) {
	a, err := uc.fetch(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, a.ID, entity.AppointmentArrived); err != nil {
		return nil, err
	}
	a.Status = entity.AppointmentArrived
	out := toResponse(a)
	return &out, nil
}

// Cancel cancela una cita programada. Repetir la cancelación no es error;
// una cita atendida o expirada no se puede cancelar.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, id string) (*dto.AppointmentResponse, error) {
	a, err := uc.fetch(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case entity.AppointmentCancelled:
	case entity.AppointmentScheduled:
		if err := uc.repo.UpdateStatus(ctx, a.ID, entity.AppointmentCancelled); err != nil {
			return nil, err
		}
		a.Status = entity.AppointmentCancelled
	default:
		return nil, domain.ErrAppointmentClosed
	}
	out := toResponse(a)
	return &out, nil
}

// Delete elimina la cita de forma permanente.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	a, err := uc.fetch(ctx, actor, id)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, a.ID)
}

// fetch carga la cita y verifica que el actor sea admin o dueño.
func (uc *UseCase) fetch(ctx context.Context, actor entity.Actor, id string) (*entity.Appointment, error) {
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrAppointmentNotFound
	}
	if !actor.CanManage(a.UserID) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func (uc *UseCase) checkParts(ctx context.Context, ids []string) error {
	for _, id := range ids {
		p, err := uc.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
	}
	return nil
}

func toResponse(a *entity.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Name:        a.CustomerName,
		Phone:       a.Phone,
		Service:     a.Service,
		Date:        a.Date,
		Hour:        a.Hour,
		ScheduledAt: a.ScheduledAt,
		Status:      a.Status,
		Parts:       partRefs(a.PartIDs, nil),
		CreatedAt:   a.CreatedAt,
	}
}

func partRefs(ids []string, names map[string]string) []dto.PartRef {
	refs := make([]dto.PartRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, dto.PartRef{ID: id, Name: names[id]})
	}
	return refs
}
