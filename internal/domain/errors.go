package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// Agenda de citas.
	ErrMissingFields          = errors.New("faltan campos obligatorios")
	ErrInvalidDate            = errors.New("fecha inválida")
	ErrInvalidSlotGranularity = errors.New("solo se pueden agendar citas en intervalos de 30 minutos")
	ErrClosedDay              = errors.New("el taller no atiende los domingos")
	ErrOutsideBusinessHours   = errors.New("la hora está fuera del horario de atención")
	ErrAppointmentNotFound    = errors.New("cita no encontrada")
	ErrAppointmentClosed      = errors.New("la cita ya no está programada")

	// Catálogo, carrito y checkout.
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInvalidDelta      = errors.New("delta inválido, usa 1 o -1")
	ErrOutOfStock        = errors.New("producto sin stock")
	ErrStockExceeded     = errors.New("no puedes exceder el stock")
	ErrItemNotFound      = errors.New("el producto no está en el carrito")
	ErrEmptyCart         = errors.New("el carrito está vacío")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
