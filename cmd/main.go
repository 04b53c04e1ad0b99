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
	"golang.org/x/time/rate"

	cancelBookingHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/cancel_booking"
	cancelFutureNotificationsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/cancel_future_notifications"
	createBookingHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/create_booking"
	dispatchNotificationsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/dispatch_notifications"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_available_slots"
	getBarbershopBookingsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_barbershop_bookings"
	getBarbershopConfigHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_barbershop_config"
	getBookingHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_user_bookings"
	getUserWaitlistHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/get_user_waitlist"
	joinWaitlistHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/join_waitlist"
	markWaitlistSeenHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/mark_waitlist_seen"
	reconcileBarbershopPaymentsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/reconcile_barbershop_payments"
	reconcileSessionHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/reconcile_session"
	reconcileUserPaymentsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/reconcile_user_payments"
	stripeWebhookHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/stripe_webhook"
	updateMessagingSettingsHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/update_messaging_settings"
	updateWeeklyHoursHandler "github.com/m04kA/SMC-BarberBooking/internal/api/handlers/update_weekly_hours"
	"github.com/m04kA/SMC-BarberBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BarberBooking/internal/config"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	bookingRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/booking"
	notificationRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/notification"
	waitlistRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/waitlist"
	stripeProvider "github.com/m04kA/SMC-BarberBooking/internal/integrations/stripe"
	twilioProvider "github.com/m04kA/SMC-BarberBooking/internal/integrations/twilio"
	"github.com/m04kA/SMC-BarberBooking/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-BarberBooking/internal/service/bookings"
	configService "github.com/m04kA/SMC-BarberBooking/internal/service/config"
	notificationsService "github.com/m04kA/SMC-BarberBooking/internal/service/notifications"
	waitlistService "github.com/m04kA/SMC-BarberBooking/internal/service/waitlist"
	createBookingUC "github.com/m04kA/SMC-BarberBooking/internal/usecase/create_booking"
	dispatchNotificationsUC "github.com/m04kA/SMC-BarberBooking/internal/usecase/dispatch_notifications"
	fulfillWaitlistUC "github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
	getAvailableSlotsUC "github.com/m04kA/SMC-BarberBooking/internal/usecase/get_available_slots"
	reconcilePaymentUC "github.com/m04kA/SMC-BarberBooking/internal/usecase/reconcile_payment"
	"github.com/m04kA/SMC-BarberBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/logger"
	"github.com/m04kA/SMC-BarberBooking/pkg/metrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
	"github.com/m04kA/SMC-BarberBooking/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		configPath = path
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

	log.Info("Starting SMC-BarberBooking...")
	log.Info("Configuration loaded from %s", configPath)

	zone, err := slottime.NewZone(cfg.Business.Timezone)
	if err != nil {
		log.Fatal("Invalid business timezone: %v", err)
	}
	log.Info("Business timezone: %s", zone.Name())

	// Метрики: nil-коллектор ничего не пишет
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}
	stopMetricsCh := make(chan struct{})

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(config.Duration(cfg.Database.ConnMaxLifetime))

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	barbershopRepository := barbershopRepo.NewRepository(wrappedDB)
	notificationRepository := notificationRepo.NewRepository(wrappedDB)
	waitlistRepository := waitlistRepo.NewRepository(wrappedDB)

	// Интеграции
	stripeClient := stripeProvider.NewClient(stripeProvider.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		SessionTTL:    time.Duration(cfg.Stripe.SessionTTLMin) * time.Minute,
		Timeout:       config.Duration(cfg.Stripe.Timeout),
		MaxRetries:    cfg.Stripe.MaxRetries,
	}, log)
	twilioClient := twilioProvider.NewClient(twilioProvider.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		From:       cfg.Twilio.From,
		WhatsApp:   cfg.Twilio.WhatsApp,
		Timeout:    config.Duration(cfg.Twilio.Timeout),
	}, log)
	sendLimiter := rate.NewLimiter(rate.Limit(cfg.Notifications.RatePerSecond), cfg.Notifications.RateBurst)
	log.Info("Integration clients initialized (stripe currency=%s, twilio whatsapp=%t, rate=%.1f/s)",
		cfg.Stripe.Currency, cfg.Twilio.WhatsApp, cfg.Notifications.RatePerSecond)

	// Сервисы и use cases
	notificationSvc := notificationsService.NewService(notificationRepository, cfg.Business.DefaultCountryCode, log)

	fulfillWaitlistUseCase := fulfillWaitlistUC.NewUseCase(
		waitlistRepository,
		bookingRepository,
		barbershopRepository,
		notificationSvc,
		txMgr,
		metricsCollector,
		zone,
		cfg.Waitlist.MaxAttempts,
		log,
	)

	slotSettings := getAvailableSlotsUC.Settings{
		StepMinutes:    cfg.Booking.SlotStepMinutes,
		Buffer:         time.Duration(cfg.Booking.BufferMinutes) * time.Minute,
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
	}
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		barbershopRepository,
		bookingRepository,
		txMgr,
		zone,
		slotSettings,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		barbershopRepository,
		stripeClient,
		notificationSvc,
		fulfillWaitlistUseCase,
		txMgr,
		metricsCollector,
		zone,
		createBookingUC.Settings{
			StepMinutes:    slotSettings.StepMinutes,
			Buffer:         slotSettings.Buffer,
			MaxAdvanceDays: slotSettings.MaxAdvanceDays,
		},
		log,
	)

	reconcilePaymentUseCase := reconcilePaymentUC.NewUseCase(
		bookingRepository,
		stripeClient,
		notificationSvc,
		fulfillWaitlistUseCase,
		txMgr,
		metricsCollector,
		reconcilePaymentUC.Options{
			Lookback:    time.Duration(cfg.Reconciliation.LookbackHours) * time.Hour,
			MinAge:      time.Duration(cfg.Reconciliation.MinAgeMinutes) * time.Minute,
			UserLimit:   cfg.Reconciliation.UserLimit,
			TenantLimit: cfg.Reconciliation.TenantLimit,
			ItemTimeout: config.Duration(cfg.Reconciliation.ItemTimeoutSec),
		},
		log,
	)

	dispatchUseCase := dispatchNotificationsUC.NewUseCase(
		notificationRepository,
		twilioClient,
		sendLimiter,
		metricsCollector,
		zone,
		dispatchNotificationsUC.Options{
			MaxAttempts:        cfg.Notifications.MaxAttempts,
			BatchSize:          cfg.Notifications.BatchSize,
			MaxJobsPerRun:      cfg.Notifications.MaxJobsPerRun,
			BackoffBase:        config.Duration(cfg.Notifications.BackoffBaseSecs),
			BackoffMax:         config.Duration(cfg.Notifications.BackoffMaxSecs),
			SendTimeout:        config.Duration(cfg.Notifications.SendTimeoutSecs),
			DefaultCountryCode: cfg.Business.DefaultCountryCode,
			Templates: dispatchNotificationsUC.Templates{
				Confirm:     cfg.Notifications.ConfirmContentSID,
				Reminder24h: cfg.Notifications.Reminder24hSID,
				Reminder1h:  cfg.Notifications.Reminder1hSID,
			},
		},
		log,
	)

	bookingSvc := bookingsService.NewService(
		bookingRepository,
		barbershopRepository,
		notificationSvc,
		fulfillWaitlistUseCase,
		txMgr,
		zone,
		log,
	)
	configSvc := configService.NewService(barbershopRepository, notificationSvc, txMgr, zone, log)
	waitlistSvc := waitlistService.NewService(waitlistRepository, barbershopRepository, zone, cfg.Booking.MaxAdvanceDays, log)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, zone, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBarbershopBookings := getBarbershopBookingsHandler.NewHandler(bookingSvc, log)
	getBarbershopConfig := getBarbershopConfigHandler.NewHandler(configSvc, log)
	updateMessagingSettings := updateMessagingSettingsHandler.NewHandler(configSvc, log)
	updateWeeklyHours := updateWeeklyHoursHandler.NewHandler(configSvc, log)
	joinWaitlist := joinWaitlistHandler.NewHandler(waitlistSvc, log)
	getUserWaitlist := getUserWaitlistHandler.NewHandler(waitlistSvc, log)
	markWaitlistSeen := markWaitlistSeenHandler.NewHandler(waitlistSvc, log)
	reconcileSession := reconcileSessionHandler.NewHandler(reconcilePaymentUseCase, log)
	reconcileUserPayments := reconcileUserPaymentsHandler.NewHandler(reconcilePaymentUseCase, log)
	stripeWebhook := stripeWebhookHandler.NewHandler(reconcilePaymentUseCase, log)
	dispatchNotifications := dispatchNotificationsHandler.NewHandler(dispatchUseCase, log)
	reconcileBarbershopPayments := reconcileBarbershopPaymentsHandler.NewHandler(reconcilePaymentUseCase, log)
	cancelFutureNotifications := cancelFutureNotificationsHandler.NewHandler(notificationSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты мастера на день
	api.HandleFunc("/barbershops/{barbershopId}/barbers/{barberId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Webhook платёжного провайдера, защищён подписью
	api.HandleFunc("/webhooks/stripe", stripeWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Оплата ---
	protected.HandleFunc("/payments/sessions/{sessionId}/reconcile", reconcileSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/payments/reconcile", reconcileUserPayments.Handle).Methods(http.MethodPost)

	// --- Лист ожидания ---
	protected.HandleFunc("/waitlist", joinWaitlist.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId}/waitlist", getUserWaitlist.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/waitlist/{entryId}/seen", markWaitlistSeen.Handle).Methods(http.MethodPatch)

	// --- Управление барбершопом (для владельца) ---
	protected.HandleFunc("/barbershops/{barbershopId}/bookings", getBarbershopBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/barbershops/{barbershopId}/config", getBarbershopConfig.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/barbershops/{barbershopId}/config/messaging",
		updateMessagingSettings.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/barbershops/{barbershopId}/config/weekly-hours",
		updateWeeklyHours.Handle).Methods(http.MethodPut)

	// ============================================================
	// INTERNAL ROUTES (требуют X-Cron-Secret header)
	// ============================================================

	internal := api.PathPrefix("/internal").Subrouter()
	internal.Use(middleware.CronAuth(cfg.Cron.Secret))

	internal.HandleFunc("/notifications/dispatch", dispatchNotifications.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/barbershops/{barbershopId}/payments/reconcile",
		reconcileBarbershopPayments.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/barbershops/{barbershopId}/notifications/cancel-future",
		cancelFutureNotifications.Handle).Methods(http.MethodPost)

	if cfg.Cron.Secret == "" {
		log.Warn("cron.secret is empty, internal routes reject every request")
	}

	// Встроенный планировщик
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(scheduler.Config{
			DispatchSpec:  cfg.Scheduler.DispatchSpec,
			ReconcileSpec: cfg.Scheduler.ReconcileSpec,
		}, zone.Location(), dispatchUseCase, reconcilePaymentUseCase, barbershopRepository, log)
		if err != nil {
			log.Fatal("Failed to configure scheduler: %v", err)
		}
		jobs.Start()
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Duration(cfg.Server.IdleTimeout),
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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		config.Duration(cfg.Server.ShutdownTimeout),
	)
	defer cancel()

	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
