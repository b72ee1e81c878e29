package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DBConfig struct {
	// postgres | mysql | sqlite
	Driver string
	// Полный DSN; если задан, Host/Port/... игнорируются.
	DSN string

	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // минут
}

func LoadDBConfig() (*DBConfig, error) {
	cfg := &DBConfig{
		Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DSN:             getEnv("DB_DSN", ""),
		Host:            getEnv("DB_HOST", "postgres"),
		User:            getEnv("DB_USER", "travel"),
		Password:        getEnv("DB_PASSWORD", "travel"),
		Name:            getEnv("DB_NAME", "travel_booking"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
		Port:            getEnvInt("DB_PORT", 5432),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
	}

	switch cfg.Driver {
	case "postgres", "mysql":
		if cfg.DSN == "" && (cfg.Host == "" || cfg.User == "" || cfg.Name == "") {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case "sqlite":
		if cfg.DSN == "" {
			cfg.DSN = "travel_booking.db"
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return cfg, nil
}

// AppConfig — транспорт, логирование и политики движка.
type AppConfig struct {
	HTTPAddr  string
	GRPCAddr  string
	JWTSecret string
	// Разрешённые origin через запятую, пустая строка разрешает любые.
	CORSOrigins string

	LogLevel  string
	LogFormat string // text | json

	// 0 выключает встроенный таймер свипера.
	SweepInterval time.Duration

	TxMaxAttempts      int
	CommissionPercent  int
	GatewayTimeout     time.Duration
	GatewayMaxAttempts int
	ReminderWindowDays int
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:           getEnv("GRPC_ADDR", ":50051"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_MIN", 60)) * time.Minute,
		TxMaxAttempts:      getEnvInt("TX_MAX_ATTEMPTS", 3),
		CommissionPercent:  getEnvInt("PLATFORM_COMMISSION_PERCENT", 0),
		GatewayTimeout:     time.Duration(getEnvInt("GATEWAY_TIMEOUT_SEC", 10)) * time.Second,
		GatewayMaxAttempts: getEnvInt("GATEWAY_MAX_ATTEMPTS", 3),
		ReminderWindowDays: getEnvInt("REMINDER_WINDOW_DAYS", 2),
	}

	if cfg.TxMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid app config: TX_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.GatewayMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid app config: GATEWAY_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.CommissionPercent < 0 || cfg.CommissionPercent > 100 {
		return nil, fmt.Errorf("invalid app config: PLATFORM_COMMISSION_PERCENT must be in [0, 100]")
	}
	if cfg.SweepInterval < 0 {
		cfg.SweepInterval = 0
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
