package entity

import "time"

// Estados de una cita. Scheduled es el único estado inicial; el resto son terminales.
const (
	AppointmentScheduled = "scheduled"
	AppointmentArrived   = "arrived"
	AppointmentExpired   = "expired"
	AppointmentCancelled = "cancelled"
)

// Appointment representa una cita de servicio en el taller.
// ScheduledAt es el instante canónico derivado de Date + Hour y se usa para ordenar y expirar.
type Appointment struct {
	ID           string
	UserID       string // dueño de la cita
	CustomerName string
	Phone        string
	Service      string
	Date         string // tal como lo envió el cliente (YYYY-MM-DD o DD/MM/YYYY)
	Hour         string // HH:MM, minutos en {00, 30}
	ScheduledAt  time.Time
	Status       string
	PartIDs      []string // repuestos reservados (referencia débil a Product)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal informa si la cita ya no puede cambiar de estado por el barrido de expiración.
func (a *Appointment) IsTerminal() bool {
	return a.Status != AppointmentScheduled
}

// AppointmentDetail es una cita con las referencias resueltas para listados.
type AppointmentDetail struct {
	Appointment
	OwnerEmail string
	PartNames  map[string]string // product id -> nombre; faltan los productos eliminados
}
