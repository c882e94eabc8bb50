package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/pkg/logger"
)

// HTTPRecorder registra métricas por petición.
type HTTPRecorder interface {
	RecordHTTP(method, route string, status int, duration time.Duration)
}

// RequestLogger registra cada petición (método, ruta, estado, latencia) y alimenta las métricas.
// Resuelve el error con el ErrorHandler de la app para conocer el estado final.
func RequestLogger(log *logger.Logger, rec HTTPRecorder) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Msg("request")

		if rec != nil {
			rec.RecordHTTP(c.Method(), c.Route().Path, status, elapsed)
		}
		return nil
	}
}
