package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User representa un cliente o administrador del taller.
type User struct {
	ID           string
	Email        string // normalizado: minúsculas y sin espacios
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // user, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
