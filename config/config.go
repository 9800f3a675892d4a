package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config menampung seluruh konfigurasi aplikasi yang dibaca dari .env / environment.
type Config struct {
	AppEnv         string
	Port           string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string
	TokenTTL       time.Duration
	ResyncInterval time.Duration
	TicketCounter  string // "memory" atau "mysql"
	CORSOrigins    []string

	// EnvFileLoaded false kalau .env tidak ditemukan, dipakai untuk log peringatan di main.
	EnvFileLoaded bool
}

const (
	TicketCounterMemory = "memory"
	TicketCounterMySQL  = "mysql"
)

// Load membaca file .env (jika ada) lalu environment variable.
func Load(envFiles ...string) (*Config, error) {
	loaded := godotenv.Load(envFiles...) == nil

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TicketCounter: strings.ToLower(getEnv("TICKET_COUNTER", TicketCounterMemory)),
		EnvFileLoaded: loaded,
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.ResyncInterval, err = parseDuration("RESYNC_INTERVAL", "30s"); err != nil {
		return nil, err
	}

	if origins := getEnv("CORS_ORIGINS", "http://localhost:3000"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	switch c.TicketCounter {
	case TicketCounterMemory, TicketCounterMySQL:
	default:
		return fmt.Errorf("TICKET_COUNTER must be %q or %q, got %q", TicketCounterMemory, TicketCounterMySQL, c.TicketCounter)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "development"
}

// DSN format: username:password@tcp(host:port)/dbname?parseTime=true&loc=Asia%2FJakarta
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Asia%%2FJakarta",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
