package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

var (
	// ErrReadConfig возвращается, когда файл конфигурации не удалось прочитать
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig возвращается, когда значения конфигурации недопустимы
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Business       BusinessConfig       `toml:"business"`
	Booking        BookingConfig        `toml:"booking"`
	Waitlist       WaitlistConfig       `toml:"waitlist"`
	Notifications  NotificationsConfig  `toml:"notifications"`
	Reconciliation ReconciliationConfig `toml:"reconciliation"`
	Scheduler      SchedulerConfig      `toml:"scheduler"`
	Stripe         StripeConfig         `toml:"stripe"`
	Twilio         TwilioConfig         `toml:"twilio"`
	Cron           CronConfig           `toml:"cron"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BusinessConfig часовой пояс, в котором работают все барбершопы
type BusinessConfig struct {
	Timezone           string `toml:"timezone"`
	DefaultCountryCode string `toml:"default_country_code"`
}

// BookingConfig параметры сетки слотов
type BookingConfig struct {
	SlotStepMinutes int `toml:"slot_step_minutes"`
	BufferMinutes   int `toml:"buffer_minutes"`
	MaxAdvanceDays  int `toml:"max_advance_days"`
}

// WaitlistConfig параметры выдачи слотов из листа ожидания
type WaitlistConfig struct {
	MaxAttempts int `toml:"max_attempts"`
}

// NotificationsConfig параметры диспетчера уведомлений
type NotificationsConfig struct {
	MaxAttempts       int     `toml:"max_attempts"`
	BatchSize         int     `toml:"batch_size"`
	MaxJobsPerRun     int     `toml:"max_jobs_per_run"`
	BackoffBaseSecs   int     `toml:"backoff_base"`
	BackoffMaxSecs    int     `toml:"backoff_max"`
	SendTimeoutSecs   int     `toml:"send_timeout"`
	RatePerSecond     float64 `toml:"rate_per_second"`
	RateBurst         int     `toml:"rate_burst"`
	ConfirmContentSID string  `toml:"confirm_content_sid"`
	Reminder24hSID    string  `toml:"reminder_24h_content_sid"`
	Reminder1hSID     string  `toml:"reminder_1h_content_sid"`
}

// ReconciliationConfig параметры сверки платежей
type ReconciliationConfig struct {
	LookbackHours  int `toml:"lookback_hours"`
	MinAgeMinutes  int `toml:"min_age_minutes"`
	UserLimit      int `toml:"user_limit"`
	TenantLimit    int `toml:"tenant_limit"`
	ItemTimeoutSec int `toml:"item_timeout"`
}

// SchedulerConfig встроенный cron
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	DispatchSpec  string `toml:"dispatch_spec"`
	ReconcileSpec string `toml:"reconcile_spec"`
}

// StripeConfig платёжный провайдер
type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
	Currency      string `toml:"currency"`
	SuccessURL    string `toml:"success_url"`
	CancelURL     string `toml:"cancel_url"`
	SessionTTLMin int    `toml:"session_ttl_minutes"`
	Timeout       int    `toml:"timeout"`
	MaxRetries    int64  `toml:"max_retries"`
}

// TwilioConfig провайдер сообщений
type TwilioConfig struct {
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	From       string `toml:"from"`
	WhatsApp   bool   `toml:"whatsapp"`
	Timeout    int    `toml:"timeout"`
}

// CronConfig защита внутренних эндпоинтов, вызываемых внешним cron
type CronConfig struct {
	Secret string `toml:"secret"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и переменные окружения
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 30)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "barber_booking"
	}

	if c.Business.Timezone == "" {
		c.Business.Timezone = "America/Sao_Paulo"
	}
	if c.Business.DefaultCountryCode == "" {
		c.Business.DefaultCountryCode = "55"
	}

	setDefault(&c.Booking.SlotStepMinutes, domain.DefaultSlotStepMinutes)
	setDefault(&c.Booking.BufferMinutes, int(domain.DefaultBookingBuffer/time.Minute))
	setDefault(&c.Booking.MaxAdvanceDays, 60)

	setDefault(&c.Waitlist.MaxAttempts, domain.DefaultWaitlistMaxAttempts)

	setDefault(&c.Notifications.MaxAttempts, domain.DefaultNotificationMaxAttempts)
	setDefault(&c.Notifications.BatchSize, 50)
	setDefault(&c.Notifications.MaxJobsPerRun, 500)
	setDefault(&c.Notifications.BackoffBaseSecs, 60)
	setDefault(&c.Notifications.BackoffMaxSecs, 3600)
	setDefault(&c.Notifications.SendTimeoutSecs, 10)
	setDefault(&c.Notifications.RateBurst, 1)
	if c.Notifications.RatePerSecond <= 0 {
		c.Notifications.RatePerSecond = 10
	}

	setDefault(&c.Reconciliation.LookbackHours, 48)
	setDefault(&c.Reconciliation.MinAgeMinutes, 5)
	setDefault(&c.Reconciliation.UserLimit, 20)
	setDefault(&c.Reconciliation.TenantLimit, 100)
	setDefault(&c.Reconciliation.ItemTimeoutSec, 10)

	if c.Scheduler.DispatchSpec == "" {
		c.Scheduler.DispatchSpec = "@every 1m"
	}
	if c.Scheduler.ReconcileSpec == "" {
		c.Scheduler.ReconcileSpec = "*/15 * * * *"
	}

	if c.Stripe.Currency == "" {
		c.Stripe.Currency = "brl"
	}
	setDefault(&c.Stripe.SessionTTLMin, 30)
	setDefault(&c.Stripe.Timeout, 10)

	setDefault(&c.Twilio.Timeout, 10)
}

// applyEnv секреты из окружения перекрывают значения из файла
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DB_PASSWORD":           &c.Database.Password,
		"STRIPE_SECRET_KEY":     &c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": &c.Stripe.WebhookSecret,
		"TWILIO_ACCOUNT_SID":    &c.Twilio.AccountSID,
		"TWILIO_AUTH_TOKEN":     &c.Twilio.AuthToken,
		"CRON_SECRET":           &c.Cron.Secret,
	}
	for name, target := range overrides {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*target = value
		}
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if _, err := slottime.NewZone(c.Business.Timezone); err != nil {
		return fmt.Errorf("%w: business.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Booking.SlotStepMinutes <= 0 || 1440%c.Booking.SlotStepMinutes != 0 {
		return fmt.Errorf("%w: booking.slot_step_minutes must divide a day", ErrInvalidConfig)
	}
	if c.Waitlist.MaxAttempts <= 0 {
		return fmt.Errorf("%w: waitlist.max_attempts must be positive", ErrInvalidConfig)
	}
	if c.Notifications.BatchSize <= 0 || c.Notifications.MaxJobsPerRun < c.Notifications.BatchSize {
		return fmt.Errorf("%w: notifications.max_jobs_per_run must be >= batch_size > 0", ErrInvalidConfig)
	}
	if c.Notifications.BackoffMaxSecs < c.Notifications.BackoffBaseSecs {
		return fmt.Errorf("%w: notifications.backoff_max must be >= backoff_base", ErrInvalidConfig)
	}
	if c.Reconciliation.MinAgeMinutes*60 >= c.Reconciliation.LookbackHours*3600 {
		return fmt.Errorf("%w: reconciliation.min_age_minutes must be shorter than lookback", ErrInvalidConfig)
	}
	if len(c.Stripe.Currency) != 3 {
		return fmt.Errorf("%w: stripe.currency must be an ISO 4217 code", ErrInvalidConfig)
	}
	return nil
}

// Duration переводит секунды из конфигурации в time.Duration
func Duration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func setDefault(target *int, value int) {
	if *target <= 0 {
		*target = value
	}
}
