package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// DefaultExpireInterval periodo fijo del barrido de expiración.
const DefaultExpireInterval = time.Minute

// SweepRecorder registra el resultado de cada barrido (métricas).
type SweepRecorder interface {
	RecordSweep(expired int64, duration time.Duration, err error)
}

// ExpirationSweeper marca como expired las citas scheduled cuya hora ya pasó.
// Solo se comunica con el resto del sistema a través del repositorio.
type ExpirationSweeper struct {
	repo     repository.AppointmentRepository
	log      *logger.Logger
	metrics  SweepRecorder
	interval time.Duration
	now      func() time.Time
}

// SweeperOption personaliza el sweeper.
type SweeperOption func(*ExpirationSweeper)

// WithInterval cambia el periodo del barrido.
func WithInterval(d time.Duration) SweeperOption {
	return func(s *ExpirationSweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) SweeperOption {
	return func(s *ExpirationSweeper) { s.now = now }
}

// WithRecorder registra métricas de cada barrido.
func WithRecorder(r SweepRecorder) SweeperOption {
	return func(s *ExpirationSweeper) { s.metrics = r }
}

// NewExpirationSweeper construye el sweeper con periodo de 60 s por defecto.
func NewExpirationSweeper(repo repository.AppointmentRepository, log *logger.Logger, opts ...SweeperOption) *ExpirationSweeper {
	if log == nil {
		log = logger.Nop()
	}
	s := &ExpirationSweeper{
		repo:     repo,
		log:      log,
		interval: DefaultExpireInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta Sweep en cada tick hasta que ctx se cancele. Los errores se registran
// y el siguiente tick vuelve a intentar; no hay reintentos dentro del mismo tick.
func (s *ExpirationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("barrido de expiración iniciado")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("barrido de expiración detenido")
			return
		case <-ticker.C:
			_, _ = s.Sweep(ctx)
		}
	}
}

// Sweep ejecuta un barrido: una única actualización masiva condicional.
// Nunca entra en pánico hacia el llamador.
func (s *ExpirationSweeper) Sweep(ctx context.Context) (expired int64, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("expire appointments: panic: %v", r)
		}
		if err != nil {
			s.log.Error().Err(err).Msg("error expirando citas")
		} else if expired > 0 {
			s.log.Info().Int64("expired", expired).Msg("citas marcadas como expired")
		}
		if s.metrics != nil {
			s.metrics.RecordSweep(expired, time.Since(start), err)
		}
	}()

	expired, err = s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire appointments: %w", err)
	}
	return expired, nil
}
