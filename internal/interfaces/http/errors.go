package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/domain"
	"github.com/jhoicas/taller-api/pkg/logger"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable traduce errores de dominio a HTTP. El orden importa solo si un error envuelve a otro.
var errorTable = []errorMapping{
	{domain.ErrMissingFields, fiber.StatusBadRequest, "MISSING_FIELDS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidDate, fiber.StatusBadRequest, "INVALID_DATE"},
	{domain.ErrInvalidSlotGranularity, fiber.StatusBadRequest, "INVALID_SLOT"},
	{domain.ErrClosedDay, fiber.StatusBadRequest, "CLOSED_DAY"},
	{domain.ErrOutsideBusinessHours, fiber.StatusBadRequest, "OUTSIDE_BUSINESS_HOURS"},
	{domain.ErrAppointmentClosed, fiber.StatusBadRequest, "APPOINTMENT_CLOSED"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidDelta, fiber.StatusBadRequest, "INVALID_DELTA"},
	{domain.ErrOutOfStock, fiber.StatusBadRequest, "OUT_OF_STOCK"},
	{domain.ErrStockExceeded, fiber.StatusBadRequest, "STOCK_EXCEEDED"},
	{domain.ErrEmptyCart, fiber.StatusBadRequest, "EMPTY_CART"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK"},
	{domain.ErrEmailAlreadyExists, fiber.StatusBadRequest, "EMAIL_EXISTS"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrAppointmentNotFound, fiber.StatusNotFound, "APPOINTMENT_NOT_FOUND"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrItemNotFound, fiber.StatusNotFound, "ITEM_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
}

// ErrorHandler es el manejador de errores de Fiber: los errores de dominio se responden con
// su código; cualquier otro se registra y responde 500 con un mensaje genérico.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		for _, m := range errorTable {
			if errors.Is(err, m.err) {
				return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
			}
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
