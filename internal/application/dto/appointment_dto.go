package dto

import "time"

// CreateAppointmentRequest entrada para agendar una cita.
// ScheduledAt es opcional: si viene, define el instante; date y hour se validan igualmente.
type CreateAppointmentRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Service     string     `json:"service"`
	Date        string     `json:"date"`
	Hour        string     `json:"hour"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Parts       []string   `json:"parts"`
	// UserID permite a un admin agendar a nombre de otro usuario. Se ignora para no-admin.
	UserID string `json:"userId"`
}

// UpdateAppointmentRequest edición parcial de una cita. Campos nil no cambian.
type UpdateAppointmentRequest struct {
	Name        *string    `json:"name"`
	Phone       *string    `json:"phone"`
	Service     *string    `json:"service"`
	Date        *string    `json:"date"`
	Hour        *string    `json:"hour"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Parts       *[]string  `json:"parts"`
}

// PartRef repuesto reservado en una cita.
type PartRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AppointmentResponse salida de una cita.
type AppointmentResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail,omitempty"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Service     string    `json:"service"`
	Date        string    `json:"date"`
	Hour        string    `json:"hour"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	Parts       []PartRef `json:"parts"`
	CreatedAt   time.Time `json:"createdAt"`
}
