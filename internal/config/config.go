package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server          ServerConfig   `toml:"server"`
	Database        DatabaseConfig `toml:"database"`
	Logs            LogsConfig     `toml:"logs"`
	Metrics         MetricsConfig  `toml:"metrics"`
	SettingsService ServiceConfig  `toml:"settings_service"`
	Calendar        CalendarConfig `toml:"calendar"`
	Kafka           KafkaConfig    `toml:"kafka"`
	Webhook         WebhookConfig  `toml:"webhook"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строит строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ServiceConfig настройки интеграционного HTTP клиента
type ServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// CalendarConfig настройки провайдера внешнего календаря
type CalendarConfig struct {
	AuthURL             string `toml:"auth_url"`
	TokenURL            string `toml:"token_url"`
	APIBaseURL          string `toml:"api_base_url"`
	ClientID            string `toml:"client_id"`
	ClientSecret        string `toml:"client_secret"`
	RedirectURL         string `toml:"redirect_url"`
	SettingsRedirectURL string `toml:"settings_redirect_url"` // куда редиректить после OAuth callback
	WebhookCallbackURL  string `toml:"webhook_callback_url"`  // адрес приема push-уведомлений
	Timeout             int    `toml:"timeout"`               // секунды
}

// KafkaConfig настройки эмиттера уведомлений
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// WebhookConfig настройки sweep'а webhook-каналов
type WebhookConfig struct {
	SweepIntervalHours int `toml:"sweep_interval_hours"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Webhook.SweepIntervalHours == 0 {
		cfg.Webhook.SweepIntervalHours = 24
	}

	return &cfg, nil
}
