package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/taller-api/internal/application/appointment"
	"github.com/jhoicas/taller-api/internal/application/auth"
	"github.com/jhoicas/taller-api/internal/application/cart"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain/repository"
	"github.com/jhoicas/taller-api/internal/domain/schedule"
	"github.com/jhoicas/taller-api/internal/infrastructure/memory"
	"github.com/jhoicas/taller-api/internal/infrastructure/metrics"
	"github.com/jhoicas/taller-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/taller-api/internal/interfaces/http"
	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// storage agrupa los repositorios del backend elegido.
type storage struct {
	users        repository.UserRepository
	products     repository.ProductRepository
	appointments repository.AppointmentRepository
	carts        repository.CartRepository
	tx           cart.TxRunner
	ping         func(ctx context.Context) error
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	rules, err := scheduleRules(cfg.Schedule)
	if err != nil {
		log.Fatal().Err(err).Msg("horario de atención inválido")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(store.products)
	userUC := usecase.NewUserUseCase(store.users)
	appointmentUC := appointment.NewUseCase(store.appointments, store.products, store.users, rules)
	cartUC := cart.NewUseCase(store.carts, store.products, store.tx, collector)

	sweeper := appointment.NewExpirationSweeper(store.appointments, log.Component("expiration"),
		appointment.WithInterval(cfg.Jobs.ExpireInterval),
		appointment.WithRecorder(collector),
	)
	go sweeper.Run(ctx)

	limiter := httpRouter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log.Component("http"),
		Metrics:     collector,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerFile != "" {
		if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.App.SwaggerFile,
				Path:     "docs",
				Title:    "Taller API",
			}))
		} else {
			log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      productUC,
		UserUC:         userUC,
		AppointmentUC:  appointmentUC,
		CartUC:         cartUC,
		JWTSecret:      cfg.JWT.Secret,
		AuthLimiter:    limiter,
		MetricsHandler: metrics.Handler(registry),
		Ping:           store.ping,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		m := memory.New()
		return &storage{
			users:        m.Users(),
			products:     m.Products(),
			appointments: m.Appointments(),
			carts:        m.Carts(),
			tx:           m,
			close:        func() {},
		}, nil
	}

	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		users:        postgres.NewUserRepository(pool),
		products:     postgres.NewProductRepository(pool),
		appointments: postgres.NewAppointmentRepository(pool),
		carts:        postgres.NewCartRepository(pool),
		tx:           postgres.NewTxRunner(pool),
		ping:         pool.Ping,
		close:        pool.Close,
	}, nil
}

func scheduleRules(c config.ScheduleConfig) (schedule.Rules, error) {
	loc, err := c.Location()
	if err != nil {
		return schedule.Rules{}, err
	}
	rules := schedule.DefaultRules(loc)
	if rules.Open, err = schedule.ParseHour(c.Open); err != nil {
		return schedule.Rules{}, err
	}
	if rules.Close, err = schedule.ParseHour(c.Close); err != nil {
		return schedule.Rules{}, err
	}
	return rules, nil
}
