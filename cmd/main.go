package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	adminSaveBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/admin_save_booking"
	cancelBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/cancel_booking"
	changeBookingStatusHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/change_booking_status"
	createBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_booking"
	getBusyIntervalsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_busy_intervals"
	getProviderBookingsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_provider_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/config"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/events"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/slotauthority"
	availabilityService "github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	adminSaveBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/admin_save_booking"
	createBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	rescheduleBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BookingEngine...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка над пулом: без метрик observe ничего не делает
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Проверка слотов
	slotValidator, closeAuthority, err := newSlotValidator(cfg.SlotValidation, log)
	if err != nil {
		log.Fatal("Failed to initialize slot validation: %v", err)
	}
	defer closeAuthority()
	log.Info("Slot validation mode=%s authority=%s timeout=%dms",
		slotValidator.Mode(), cfg.SlotValidation.Authority, cfg.SlotValidation.TimeoutMs)

	// Публикация событий
	var publisher interface {
		Publish(ctx context.Context, event events.BookingEvent) error
	} = events.NoopPublisher{}

	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		if err != nil {
			log.Fatal("Failed to connect to event broker: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("Booking events are published to exchange=%s", cfg.Events.Exchange)
	}

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(bookingRepository, log)
	capacity := domain.CapacityPolicy{MaxPartySize: cfg.Engine.MaxPartySize}
	lockTimeout := cfg.Locking.LockTimeout()

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogRepository,
		publisher,
		metricsCollector,
		txMgr,
		bookingsService.Options{LockTimeout: lockTimeout},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		availabilitySvc,
		slotValidator,
		publisher,
		metricsCollector,
		txMgr,
		createBookingUC.Options{LockTimeout: lockTimeout, Capacity: capacity},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		availabilitySvc,
		slotValidator,
		publisher,
		metricsCollector,
		txMgr,
		rescheduleBookingUC.Options{LockTimeout: lockTimeout},
		log,
	)

	adminSaveBookingUseCase := adminSaveBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		availabilitySvc,
		slotValidator,
		publisher,
		metricsCollector,
		txMgr,
		adminSaveBookingUC.Options{LockTimeout: lockTimeout, Capacity: capacity},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	adminSaveBooking := adminSaveBookingHandler.NewHandler(adminSaveBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	changeStatus := changeBookingStatusHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	getBusyIntervals := getBusyIntervalsHandler.NewHandler(availabilitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/complete", changeStatus.Complete).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/no-show", changeStatus.NoShow).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/approve", changeStatus.Approve).Methods(http.MethodPatch)

	// --- Исполнители ---
	api.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/busy-intervals", getBusyIntervals.Handle).Methods(http.MethodGet)

	// --- Администрирование ---
	api.HandleFunc("/admin/bookings", adminSaveBooking.Create).Methods(http.MethodPost)
	api.HandleFunc("/admin/bookings/{bookingId}", adminSaveBooking.Update).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// newSlotValidator собирает валидатор слотов по конфигурации
// Возвращаемая функция закрывает соединения источника слотов
func newSlotValidator(cfg config.SlotValidationConfig, log *logger.Logger) (*slotauthority.Validator, func(), error) {
	noop := func() {}

	mode, err := slotauthority.ParseMode(cfg.Mode)
	if err != nil {
		return nil, noop, err
	}

	if mode == slotauthority.ModeNone {
		v, err := slotauthority.NewValidator(mode, nil, cfg.Timeout(), log)
		return v, noop, err
	}

	var (
		authority slotauthority.Authority
		closeFn   = noop
	)

	switch cfg.Authority {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}

		authority = slotauthority.NewRedisAuthority(client, log)
		closeFn = func() { _ = client.Close() }
	default:
		authority = slotauthority.NewHTTPAuthority(cfg.HTTP.URL, cfg.Timeout(), cfg.HTTP.RPS, cfg.HTTP.Burst, log)
	}

	v, err := slotauthority.NewValidator(mode, authority, cfg.Timeout(), log)
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	return v, closeFn, nil
}
