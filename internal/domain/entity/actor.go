package entity

// Actor es la identidad verificada que ejecuta una operación (extraída del token).
// Se pasa explícitamente a cada caso de uso en lugar de leerse de estado global.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin informa si el actor tiene rol administrador.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanManage informa si el actor puede modificar un recurso del dueño indicado.
func (a Actor) CanManage(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}
