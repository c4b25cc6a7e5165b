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

	applyAutoconfirmHandler "github.com/lobba/scheduling-service/internal/api/handlers/apply_autoconfirm"
	calendarAuthHandler "github.com/lobba/scheduling-service/internal/api/handlers/calendar_auth"
	calendarCallbackHandler "github.com/lobba/scheduling-service/internal/api/handlers/calendar_callback"
	cancelReservationHandler "github.com/lobba/scheduling-service/internal/api/handlers/cancel_reservation"
	checkSlotHandler "github.com/lobba/scheduling-service/internal/api/handlers/check_slot"
	createReservationHandler "github.com/lobba/scheduling-service/internal/api/handlers/create_reservation"
	evaluateAutoconfirmHandler "github.com/lobba/scheduling-service/internal/api/handlers/evaluate_autoconfirm"
	getBusinessReservationsHandler "github.com/lobba/scheduling-service/internal/api/handlers/get_business_reservations"
	getCapacityHandler "github.com/lobba/scheduling-service/internal/api/handlers/get_capacity"
	getDayAvailabilityHandler "github.com/lobba/scheduling-service/internal/api/handlers/get_day_availability"
	getReservationHandler "github.com/lobba/scheduling-service/internal/api/handlers/get_reservation"
	listCalendarsHandler "github.com/lobba/scheduling-service/internal/api/handlers/list_calendars"
	setPrimaryCalendarHandler "github.com/lobba/scheduling-service/internal/api/handlers/set_primary_calendar"
	setupWebhookHandler "github.com/lobba/scheduling-service/internal/api/handlers/setup_webhook"
	triggerSyncHandler "github.com/lobba/scheduling-service/internal/api/handlers/trigger_sync"
	webhookNotificationHandler "github.com/lobba/scheduling-service/internal/api/handlers/webhook_notification"
	"github.com/lobba/scheduling-service/internal/api/middleware"
	"github.com/lobba/scheduling-service/internal/config"
	"github.com/lobba/scheduling-service/internal/infra/notify"
	blockRepo "github.com/lobba/scheduling-service/internal/infra/storage/block"
	integrationRepo "github.com/lobba/scheduling-service/internal/infra/storage/integration"
	reservationRepo "github.com/lobba/scheduling-service/internal/infra/storage/reservation"
	googleCalendarClient "github.com/lobba/scheduling-service/internal/integrations/googlecalendar"
	settingsServiceClient "github.com/lobba/scheduling-service/internal/integrations/settingsservice"
	autoconfirmService "github.com/lobba/scheduling-service/internal/service/autoconfirm"
	availabilityService "github.com/lobba/scheduling-service/internal/service/availability"
	calendarsyncService "github.com/lobba/scheduling-service/internal/service/calendarsync"
	reservationsService "github.com/lobba/scheduling-service/internal/service/reservations"
	webhookmgrService "github.com/lobba/scheduling-service/internal/service/webhookmgr"
	checkSlotUC "github.com/lobba/scheduling-service/internal/usecase/check_slot"
	createReservationUC "github.com/lobba/scheduling-service/internal/usecase/create_reservation"
	getDayAvailabilityUC "github.com/lobba/scheduling-service/internal/usecase/get_day_availability"
	"github.com/lobba/scheduling-service/pkg/dbmetrics"
	"github.com/lobba/scheduling-service/pkg/logger"
	"github.com/lobba/scheduling-service/pkg/metrics"
	"github.com/lobba/scheduling-service/pkg/simpletxmanager"
	"github.com/lobba/scheduling-service/pkg/txmanager"
)

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

	log.Info("Starting LOBBA-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем интеграционных клиентов
	settingsClient := settingsServiceClient.NewClient(
		cfg.SettingsService.URL,
		time.Duration(cfg.SettingsService.Timeout)*time.Second,
		log,
	)
	calendarClient := googleCalendarClient.NewClient(
		googleCalendarClient.Config{
			AuthURL:      cfg.Calendar.AuthURL,
			TokenURL:     cfg.Calendar.TokenURL,
			APIBaseURL:   cfg.Calendar.APIBaseURL,
			ClientID:     cfg.Calendar.ClientID,
			ClientSecret: cfg.Calendar.ClientSecret,
			RedirectURL:  cfg.Calendar.RedirectURL,
		},
		time.Duration(cfg.Calendar.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (SettingsService=%s timeout=%ds, Calendar=%s timeout=%ds)",
		cfg.SettingsService.URL, cfg.SettingsService.Timeout, cfg.Calendar.APIBaseURL, cfg.Calendar.Timeout)

	// Эмиттер внутренних уведомлений
	var notifier interface {
		Emit(ctx context.Context, event notify.Event)
	}
	if cfg.Kafka.Enabled {
		emitter := notify.NewEmitter(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer emitter.Close()
		notifier = emitter
		log.Info("Kafka notification emitter enabled (topic=%s)", cfg.Kafka.Topic)
	} else {
		notifier = notify.NopEmitter{}
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		blockRepository       *blockRepo.Repository
		integrationRepository *integrationRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		blockRepository = blockRepo.NewRepository(wrappedDB)
		integrationRepository = integrationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		blockRepository = blockRepo.NewRepository(db)
		integrationRepository = integrationRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(settingsClient, log)
	reservationsSvc := reservationsService.NewService(reservationRepository, log)
	autoconfirmSvc := autoconfirmService.NewService(
		reservationRepository,
		settingsClient,
		txMgr,
		notifier,
		log,
	)
	calendarsyncSvc := calendarsyncService.NewService(
		integrationRepository,
		reservationRepository,
		blockRepository,
		calendarClient,
		settingsClient,
		log,
	)
	webhookSvc := webhookmgrService.NewService(
		integrationRepository,
		calendarsyncSvc,
		calendarClient,
		calendarsyncSvc,
		notifier,
		cfg.Calendar.WebhookCallbackURL,
		log,
	)

	// Инициализируем use cases
	getDayAvailabilityUseCase := getDayAvailabilityUC.NewUseCase(
		reservationRepository,
		blockRepository,
		settingsClient,
		log,
	)
	checkSlotUseCase := checkSlotUC.NewUseCase(
		reservationRepository,
		blockRepository,
		settingsClient,
		txMgr,
		log,
	)
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		blockRepository,
		settingsClient,
		autoconfirmSvc,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getCapacity := getCapacityHandler.NewHandler(availabilitySvc, log)
	getDayAvailability := getDayAvailabilityHandler.NewHandler(getDayAvailabilityUseCase, log)
	checkSlot := checkSlotHandler.NewHandler(checkSlotUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationsSvc, log)
	getBusinessReservations := getBusinessReservationsHandler.NewHandler(reservationsSvc, log)
	evaluateAutoconfirm := evaluateAutoconfirmHandler.NewHandler(autoconfirmSvc, log)
	applyAutoconfirm := applyAutoconfirmHandler.NewHandler(autoconfirmSvc, log)
	calendarAuth := calendarAuthHandler.NewHandler(calendarsyncSvc, log)
	calendarCallback := calendarCallbackHandler.NewHandler(calendarsyncSvc, cfg.Calendar.SettingsRedirectURL, log)
	listCalendars := listCalendarsHandler.NewHandler(calendarsyncSvc, log)
	setPrimaryCalendar := setPrimaryCalendarHandler.NewHandler(calendarsyncSvc, log)
	triggerSync := triggerSyncHandler.NewHandler(calendarsyncSvc, log)
	setupWebhook := setupWebhookHandler.NewHandler(webhookSvc, log)
	webhookNotification := webhookNotificationHandler.NewHandler(webhookSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность: вместимость, слоты дня, точечная проверка слота
	api.HandleFunc("/businesses/{businessId}/capacity",
		getCapacity.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/availability",
		getDayAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/check-slot",
		checkSlot.Handle).Methods(http.MethodPost)

	// OAuth callback провайдера календаря: провайдер не шлет X-User-ID
	api.HandleFunc("/calendar/oauth/callback",
		calendarCallback.Handle).Methods(http.MethodGet)

	// Push-уведомления провайдера календаря
	api.HandleFunc("/calendar/notifications",
		webhookNotification.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// --- Автоподтверждение ---
	protected.HandleFunc("/reservations/{reservationId}/auto-confirmation/evaluate",
		evaluateAutoconfirm.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}/auto-confirmation/apply",
		applyAutoconfirm.Handle).Methods(http.MethodPost)

	// --- Управление бизнесом ---
	protected.HandleFunc("/businesses/{businessId}/reservations",
		getBusinessReservations.Handle).Methods(http.MethodGet)

	// --- Внешний календарь ---
	protected.HandleFunc("/businesses/{businessId}/calendar/auth",
		calendarAuth.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/calendar/calendars",
		listCalendars.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/calendar/primary",
		setPrimaryCalendar.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/businesses/{businessId}/calendar/sync",
		triggerSync.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/businesses/{businessId}/calendar/webhook",
		setupWebhook.Handle).Methods(http.MethodPost)

	// Фоновый sweep webhook-каналов: продление и очистка истекших
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		interval := time.Duration(cfg.Webhook.SweepIntervalHours) * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("Webhook sweep started (interval=%s)", interval)
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				result, err := webhookSvc.RunSweep(sweepCtx)
				if err != nil {
					log.Error("Webhook sweep failed: %v", err)
					continue
				}
				log.Info("Webhook sweep finished: renewed=%d, cleaned=%d, failed=%d",
					result.Renewed, result.Cleaned, result.Failed)
			}
		}
	}()

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

	// Останавливаем фоновый sweep
	stopSweep()

	// Останавливаем сбор метрик connection pool
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
