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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/septic-booking-service/internal/api"
	cancelBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/create_service"
	exportBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/export_bookings"
	getAvailableSlotsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_booking_history"
	getCustomerBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_customer_bookings"
	getServiceHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_service"
	getTechnicianBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/get_technician_bookings"
	listBookingsHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/list_bookings"
	listServicesHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/list_services"
	setServiceStatusHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/set_service_status"
	transitionBookingHandler "github.com/m04kA/septic-booking-service/internal/api/handlers/transition_booking"
	"github.com/m04kA/septic-booking-service/internal/api/middleware"
	"github.com/m04kA/septic-booking-service/internal/config"
	bookingRepo "github.com/m04kA/septic-booking-service/internal/infra/storage/booking"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/memory"
	"github.com/m04kA/septic-booking-service/internal/infra/storage/migrations"
	serviceRepo "github.com/m04kA/septic-booking-service/internal/infra/storage/service"
	userServiceClient "github.com/m04kA/septic-booking-service/internal/integrations/userservice"
	bookingsService "github.com/m04kA/septic-booking-service/internal/service/bookings"
	catalogService "github.com/m04kA/septic-booking-service/internal/service/catalog"
	cancelBookingUC "github.com/m04kA/septic-booking-service/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/septic-booking-service/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/septic-booking-service/internal/usecase/get_available_slots"
	transitionBookingUC "github.com/m04kA/septic-booking-service/internal/usecase/transition_booking"
	"github.com/m04kA/septic-booking-service/pkg/logger"
	"github.com/m04kA/septic-booking-service/pkg/metrics"
	"github.com/m04kA/septic-booking-service/pkg/slotlock"
	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

// bookingStore хранилище бронирований, общее для всех use cases и сервисов
type bookingStore interface {
	createBookingUC.BookingRepository
	getAvailableSlotsUC.BookingRepository
	transitionBookingUC.BookingRepository
	bookingsService.BookingRepository
}

// serviceStore хранилище каталога услуг
type serviceStore interface {
	createBookingUC.ServiceRepository
	catalogService.ServiceRepository
}

// txManager транзакции: Do для приёма бронирований, DoSerializable для переходов
type txManager interface {
	createBookingUC.TransactionManager
	transitionBookingUC.TransactionManager
}

type storage struct {
	bookings bookingStore
	services serviceStore
	tx       txManager
	db       *sql.DB // nil для in-memory хранилища
	close    func()
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting septic-booking-service...")
	log.Info("Configuration loaded from config.toml")

	// Validate уже проверил часовой пояс и шаблон слотов
	location, _ := cfg.Booking.Location()
	calendar, _ := cfg.Booking.Calendar()
	log.Info("Slot calendar: %d slots, capacity=%d, timezone=%s",
		len(calendar.Labels), calendar.Capacity, cfg.Booking.Timezone)

	// Инициализируем метрики (если включены)
	var (
		admissionMetrics  createBookingUC.MetricsRecorder
		transitionMetrics transitionBookingUC.MetricsRecorder
		routerOpts        api.Options
		metricsCollector  *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		admissionMetrics = metricsCollector
		transitionMetrics = metricsCollector
		routerOpts.Metrics = metricsCollector
		routerOpts.MetricsHandler = metricsCollector.Handler()
		routerOpts.MetricsPath = cfg.Metrics.Path
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	routerOpts.AccessLog = log

	// Фоновые задачи останавливаются вместе с сервером
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(bgCtx, cfg.RateLimit.IdleTTLDuration(), cfg.RateLimit.IdleTTLDuration())
		routerOpts.RateLimiter = limiter
		log.Info("Rate limit enabled for write endpoints (rps=%.2f, burst=%d, idle_ttl=%ds)",
			cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	}

	// Подключаем хранилище
	store, err := openStorage(cfg, location, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Статистика пула соединений PostgreSQL
	if metricsCollector != nil && store.db != nil {
		metricsCollector.Registry().MustRegister(collectors.NewDBStatsCollector(store.db, cfg.Database.DBName))
	}

	// Блокировки слотов: Redis для нескольких экземпляров, иначе in-process
	var locker createBookingUC.SlotLocker = slotlock.NewLocal()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Address, err)
		}

		locker = slotlock.NewRedis(redisClient, slotlock.RedisOptions{
			TTL:          cfg.Redis.LockTTLDuration(),
			RetryBackoff: cfg.Redis.LockRetryDuration(),
			WaitTimeout:  cfg.Redis.LockWaitDuration(),
		})
		log.Info("Redis slot locks enabled (address=%s)", cfg.Redis.Address)
	}

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(store.bookings, userClient, log)
	catalogSvc := catalogService.NewService(store.services, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(store.bookings, calendar, log)

	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.services,
		userClient,
		store.tx,
		locker,
		calendar,
		admissionMetrics,
		log,
	)

	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		store.bookings,
		userClient,
		store.tx,
		transitionMetrics,
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(transitionBookingUseCase, log)

	// Инициализируем handlers и роутер
	router := api.NewRouter(api.Handlers{
		GetAvailableSlots:     getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log),
		CreateBooking:         createBookingHandler.NewHandler(createBookingUseCase, location, log),
		GetBooking:            getBookingHandler.NewHandler(bookingSvc, log),
		GetBookingHistory:     getBookingHistoryHandler.NewHandler(bookingSvc, log),
		CancelBooking:         cancelBookingHandler.NewHandler(cancelBookingUseCase, log),
		TransitionBooking:     transitionBookingHandler.NewHandler(transitionBookingUseCase, log),
		GetCustomerBookings:   getCustomerBookingsHandler.NewHandler(bookingSvc, location, log),
		GetTechnicianBookings: getTechnicianBookingsHandler.NewHandler(bookingSvc, location, log),
		ListBookings:          listBookingsHandler.NewHandler(bookingSvc, location, log),
		ExportBookings:        exportBookingsHandler.NewHandler(bookingSvc, location, log),
		ListServices:          listServicesHandler.NewHandler(catalogSvc, log),
		GetService:            getServiceHandler.NewHandler(catalogSvc, log),
		CreateService:         createServiceHandler.NewHandler(catalogSvc, log),
		SetServiceStatus:      setServiceStatusHandler.NewHandler(catalogSvc, log),
	}, routerOpts)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopBackground()

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

// openStorage подключает PostgreSQL или in-memory хранилище по storage.driver
func openStorage(cfg *config.Config, location *time.Location, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage: data is lost on restart")
		store := memory.NewStore()
		return &storage{
			bookings: memory.NewBookingRepository(store),
			services: memory.NewServiceRepository(store),
			tx:       store,
			close:    func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("Database migrations applied: %v", migrations.Names())
	}

	return &storage{
		bookings: bookingRepo.NewRepository(db, location),
		services: serviceRepo.NewRepository(db),
		tx:       txmanager.NewTransactionManager(db),
		db:       db,
		close: func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database: %v", err)
			}
		},
	}, nil
}
