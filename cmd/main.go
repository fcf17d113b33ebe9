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

	changeBookingStatusHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/change_booking_status"
	createBookingHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/get_booking"
	getShopCalendarHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/get_shop_calendar"
	listShopBookingsHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/list_shop_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/reschedule_booking"
	setSlotOverrideHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/set_slot_override"
	updateShopCalendarHandler "github.com/m04kA/SMC-ShopBookingService/internal/api/handlers/update_shop_calendar"
	"github.com/m04kA/SMC-ShopBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ShopBookingService/internal/config"
	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/cache"
	"github.com/m04kA/SMC-ShopBookingService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/customer"
	shopRepo "github.com/m04kA/SMC-ShopBookingService/internal/infra/storage/shop"
	"github.com/m04kA/SMC-ShopBookingService/internal/integrations/notificationservice"
	bookingsService "github.com/m04kA/SMC-ShopBookingService/internal/service/bookings"
	shopsService "github.com/m04kA/SMC-ShopBookingService/internal/service/shops"
	createBookingUC "github.com/m04kA/SMC-ShopBookingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-ShopBookingService/internal/usecase/get_availability"
	rescheduleBookingUC "github.com/m04kA/SMC-ShopBookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ShopBookingService/internal/validation"
	"github.com/m04kA/SMC-ShopBookingService/pkg/clock"
	"github.com/m04kA/SMC-ShopBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
	"github.com/m04kA/SMC-ShopBookingService/pkg/metrics"
	"github.com/m04kA/SMC-ShopBookingService/pkg/txmanager"
)

// availabilityCache общий интерфейс Redis-кеша и заглушки
type availabilityCache interface {
	Get(ctx context.Context, shopID int64, date string, durationMinutes int) (*domain.DayAvailability, bool)
	Set(ctx context.Context, shopID int64, day *domain.DayAvailability, durationMinutes int)
	Invalidate(ctx context.Context, shopID int64, dates ...string)
	InvalidateShop(ctx context.Context, shopID int64)
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent)
	Close() error
}

type notificationClient interface {
	SendDepositRequestWithGracefulDegradation(ctx context.Context, req *notificationservice.DepositRequest) error
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
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

	log.Info("Starting SMC-ShopBookingService...")
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

	// При выключенных метриках обертка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	shopRepository := shopRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	customerRepository := customerRepo.NewRepository(wrappedDB)

	// Кеш доступности
	var availability availabilityCache = cache.Noop{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("Redis unavailable at %s, availability cache disabled: %v", cfg.Redis.Addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			availability = cache.NewAvailabilityCache(
				redisClient,
				time.Duration(cfg.Redis.AvailabilityTTLSeconds)*time.Second,
				log,
				metricsCollector,
			)
			log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.AvailabilityTTLSeconds)
		}
	}

	// Публикация событий
	var publisher eventPublisher = events.Noop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), log)
		log.Info("Booking events are published to kafka topic=%s brokers=%v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	// Интеграция с сервисом уведомлений
	var notifier notificationClient = notificationservice.Noop{}
	if cfg.NotificationService.Enabled {
		notifier = notificationservice.NewClient(
			cfg.NotificationService.URL,
			time.Duration(cfg.NotificationService.Timeout)*time.Second,
			log,
		)
		log.Info("NotificationService client initialized (url=%s, timeout=%ds)",
			cfg.NotificationService.URL, cfg.NotificationService.Timeout)
	}

	shopClock := clock.New(cfg.Scheduling.UTCOffsetMinutes)
	validator := validation.New()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		customerRepository,
		shopRepository,
		notifier,
		availability,
		publisher,
		metricsCollector,
		txMgr,
		shopClock,
		time.Duration(cfg.Scheduling.DepositWindowMinutes)*time.Minute,
		log,
	)
	shopSvc := shopsService.NewService(
		shopRepository,
		availability,
		txMgr,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		shopRepository,
		catalogRepository,
		bookingRepository,
		availability,
		shopClock,
		cfg.Scheduling.SlotStepMinutes,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		shopRepository,
		catalogRepository,
		bookingRepository,
		customerRepository,
		availability,
		publisher,
		validator,
		txMgr,
		shopClock,
		cfg.Scheduling.SlotStepMinutes,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		shopRepository,
		catalogRepository,
		bookingRepository,
		customerRepository,
		availability,
		publisher,
		txMgr,
		shopClock,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listShopBookings := listShopBookingsHandler.NewHandler(bookingSvc, log)
	changeBookingStatus := changeBookingStatusHandler.NewHandler(bookingSvc, log)
	getShopCalendar := getShopCalendarHandler.NewHandler(shopSvc, log)
	updateShopCalendar := updateShopCalendarHandler.NewHandler(shopSvc, log)
	setSlotOverride := setSlotOverrideHandler.NewHandler(shopSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Фоновые задачи останавливаются вместе с сервером
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// ============================================================
	// PUBLIC ROUTES (страница онлайн-записи магазина)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
		public.Use(limiter.Middleware)
		go runEvery(bgCtx, time.Minute, func(context.Context) { limiter.Cleanup() })
		log.Info("Rate limit enabled for public routes (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// Доступность слотов на дату
	public.HandleFunc("/shops/{slug}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Онлайн-запись
	public.HandleFunc("/shops/{slug}/bookings", createBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// STAFF ROUTES (требуют X-Staff-ID header)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Auth)

	// --- Бронирования ---
	staff.HandleFunc("/shops/{shopId:[0-9]+}/bookings/manual", createBooking.HandleManual).Methods(http.MethodPost)
	staff.HandleFunc("/shops/{shopId:[0-9]+}/bookings", listShopBookings.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/bookings/{bookingId}/{action:"+changeBookingStatusHandler.ActionPattern+"}",
		changeBookingStatus.Handle).Methods(http.MethodPatch)

	// --- Календарь магазина ---
	staff.HandleFunc("/shops/{shopId:[0-9]+}/calendar", getShopCalendar.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/shops/{shopId:[0-9]+}/calendar", updateShopCalendar.Handle).Methods(http.MethodPut)
	staff.HandleFunc("/shops/{shopId:[0-9]+}/slot-overrides", setSlotOverride.Handle).Methods(http.MethodPut)

	// Периодическое завершение прошедших визитов (иначе только при чтении списка)
	if cfg.Scheduling.SweepIntervalSeconds > 0 {
		interval := time.Duration(cfg.Scheduling.SweepIntervalSeconds) * time.Second
		go runEvery(bgCtx, interval, func(ctx context.Context) {
			if _, err := bookingSvc.SweepCompleted(ctx, nil); err != nil {
				log.Error("Sweep: failed to complete visits: %v", err)
			}
		})
		log.Info("Visit completion sweep runs every %s", interval)
	}

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

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}

// runEvery вызывает fn с интервалом до отмены ctx
func runEvery(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
