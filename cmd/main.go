package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	applyActionTokenHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/apply_action_token"
	appointmentActionHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/appointment_action"
	conversationEventHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/conversation_event"
	createProviderHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_provider"
	createServiceHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_service"
	deleteDayOffHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/delete_day_off"
	deleteTemplateHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/delete_template"
	getAppointmentHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_available_slots"
	getClientAppointmentsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_client_appointments"
	getDaysOffHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_days_off"
	getProviderAppointmentsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_provider_appointments"
	getTemplatesHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_templates"
	leaveReviewHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/leave_review"
	listProvidersHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/list_providers"
	listServicesHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/list_services"
	markDayOffHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/mark_day_off"
	setProviderActiveHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/set_provider_active"
	setServiceActiveHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/set_service_active"
	setTemplateHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/set_template"
	startConversationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/start_conversation"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/config"
	sessionStore "github.com/m04kA/SMC-BookingEngine/internal/infra/session"
	appointmentRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/catalog"
	outboxRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/outbox"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-BookingEngine/internal/service/appointments"
	catalogService "github.com/m04kA/SMC-BookingEngine/internal/service/catalog"
	templatesService "github.com/m04kA/SMC-BookingEngine/internal/service/templates"
	bookingConversationUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/booking_conversation"
	finalizeBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/finalize_booking"
	getAvailableDatesUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_dates"
	getAvailableSlotsUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/internal/worker/reminders"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("BOOKING_CONFIG"); v != "" {
		configPath = v
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

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Unknown booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Метрики (nil-safe, при выключенных метриках коллектор nil)
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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB).WithMaxRetries(cfg.Database.SerializationRetries)

	// Redis для черновиков записи
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
	}
	pingCancel()
	log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	sessions := sessionStore.NewStore(redisClient, cfg.Session.KeyPrefix)

	// Use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogRepository,
		scheduleRepository,
		appointmentRepository,
		cfg.Booking.MinBookingNoticeMinutes,
		location,
		log,
	)
	getAvailableDatesUseCase := getAvailableDatesUC.NewUseCase(
		catalogRepository,
		scheduleRepository,
		appointmentRepository,
		cfg.Booking.HorizonDays,
		cfg.Booking.MinBookingNoticeMinutes,
		location,
		log,
	)
	finalizeBookingUseCase := finalizeBookingUC.NewUseCase(
		getAvailableSlotsUseCase,
		appointmentRepository,
		catalogRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		log,
	)
	conversationUseCase := bookingConversationUC.NewUseCase(
		sessions,
		catalogRepository,
		getAvailableDatesUseCase,
		getAvailableSlotsUseCase,
		finalizeBookingUseCase,
		time.Duration(cfg.Session.DraftTTLMinutes)*time.Minute,
		metricsCollector,
		log,
	)

	// Сервисы
	appointmentSvc := appointmentsService.NewService(appointmentRepository, outboxRepository, txMgr, metricsCollector, log)
	catalogSvc := catalogService.NewService(catalogRepository, log)
	templatesSvc := templatesService.NewService(scheduleRepository, catalogRepository, log)

	// Фоновые процессы
	bgCtx, bgCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if cfg.Kafka.Enabled {
		writer := notifier.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer writer.Close()

		relay := notifier.NewRelay(outboxRepository, writer, txMgr, notifier.Config{
			PollInterval: time.Duration(cfg.Kafka.PollIntervalMs) * time.Millisecond,
			BatchSize:    cfg.Kafka.BatchSize,
		}, metricsCollector, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(bgCtx)
		}()
		log.Info("Notification relay started (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		log.Warn("Kafka disabled, notifications stay in outbox")
	}

	if cfg.Reminders.Enabled {
		worker := reminders.NewWorker(appointmentRepository, outboxRepository, txMgr, reminders.Config{
			Interval: time.Duration(cfg.Reminders.IntervalSeconds) * time.Second,
			LeadTime: time.Duration(cfg.Reminders.LeadHours) * time.Hour,
			Location: location,
		}, metricsCollector, &reminders.RealTimeProvider{}, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(bgCtx)
		}()
	}

	// Инициализируем handlers
	startConversation := startConversationHandler.NewHandler(conversationUseCase, log)
	conversationEvent := conversationEventHandler.NewHandler(conversationUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	appointmentAction := appointmentActionHandler.NewHandler(appointmentSvc, log)
	applyActionToken := applyActionTokenHandler.NewHandler(appointmentSvc, log)
	leaveReview := leaveReviewHandler.NewHandler(appointmentSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getProviderAppointments := getProviderAppointmentsHandler.NewHandler(appointmentSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentSvc, log)
	setTemplate := setTemplateHandler.NewHandler(templatesSvc, log)
	getTemplates := getTemplatesHandler.NewHandler(templatesSvc, log)
	deleteTemplate := deleteTemplateHandler.NewHandler(templatesSvc, log)
	markDayOff := markDayOffHandler.NewHandler(templatesSvc, log)
	getDaysOff := getDaysOffHandler.NewHandler(templatesSvc, log)
	deleteDayOff := deleteDayOffHandler.NewHandler(templatesSvc, log)
	createProvider := createProviderHandler.NewHandler(catalogSvc, log)
	listProviders := listProvidersHandler.NewHandler(catalogSvc, log)
	setProviderActive := setProviderActiveHandler.NewHandler(catalogSvc, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	listServices := listServicesHandler.NewHandler(catalogSvc, log)
	setServiceActive := setServiceActiveHandler.NewHandler(catalogSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/providers", listProviders.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/services", listServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/templates", getTemplates.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/days-off", getDaysOff.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Диалог записи (клиент) ---
	protected.HandleFunc("/conversations/start", startConversation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/conversations/events", conversationEvent.Handle).Methods(http.MethodPost)

	// --- Записи ---
	protected.HandleFunc("/actions", applyActionToken.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/review", leaveReview.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/{action:accept|reject|complete|cancel}",
		appointmentAction.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/appointments", getProviderAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Расписание мастера ---
	protected.HandleFunc("/providers/{providerId}/templates/{dayOfWeek:[0-6]}", setTemplate.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/templates/{dayOfWeek:[0-6]}", deleteTemplate.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/days-off", markDayOff.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/days-off/{date}", deleteDayOff.Handle).Methods(http.MethodDelete)

	// --- Справочник ---
	protected.HandleFunc("/providers", createProvider.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}", setProviderActive.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/providers/{providerId}/services", createService.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/services/{serviceId}", setServiceActive.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем relay и напоминания, затем сбор метрик пула
	bgCancel()
	wg.Wait()
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
