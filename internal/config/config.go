package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Хранилища движка сделок
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config структура конфигурации
type Config struct {
	Port             string
	WSPort           string
	TelegramBotToken string
	JWTSecret        string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	AppEnv           string
	Storage          string
	HandoffWindow    time.Duration
	RateLimit        RateLimitConfig
	LogLevel         logrus.Level
	AdminTelegramIDs []int64
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// RateLimitConfig ограничение частоты запросов к API с одного адреса
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// ErrMissingJWTSecret без секрета нельзя выпускать и проверять токены
var ErrMissingJWTSecret = errors.New("не задан JWT_SECRET")

// LoadConfig загружает переменные из .env и окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("⚠️ .env файл не найден, используем переменные окружения")
	}

	maxConns, err := getInt("PGMAXCONNS", 10)
	if err != nil {
		return nil, err
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "flippy_user"),
		Password: getEnv("PGPASSWORD", "flippy_pass"),
		Name:     getEnv("PGDATABASE", "flippy"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	window, err := getDuration("HANDOFF_WINDOW", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("HANDOFF_WINDOW должен быть положительным: %s", window)
	}

	rateMax, err := getInt("RATE_LIMIT_MAX", 60)
	if err != nil {
		return nil, err
	}
	rateWindow, err := getDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("некорректный LOG_LEVEL: %w", err)
	}

	admins, err := getInt64List("ADMIN_TELEGRAM_IDS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		WSPort:           getEnv("WS_PORT", "8081"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		AppEnv:           getEnv("APP_ENV", "production"), // По умолчанию production
		Storage:          getEnv("STORAGE", StoragePostgres),
		HandoffWindow:    window,
		RateLimit:        RateLimitConfig{Max: rateMax, Window: rateWindow},
		LogLevel:         level,
		AdminTelegramIDs: admins,
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("неизвестное хранилище STORAGE=%q", cfg.Storage)
	}
	if cfg.TelegramBotToken == "" && !cfg.IsDevelopment() {
		logrus.Warn("⚠️ TELEGRAM_BOT_TOKEN не задан, вход через Telegram недоступен")
	}

	return cfg, nil
}

// IsDevelopment сообщает, запущен ли сервис в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("некорректное значение %s=%q: %w", key, value, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("некорректное значение %s=%q: %w", key, value, err)
	}
	return d, nil
}

// getInt64List разбирает список чисел через запятую
func getInt64List(key string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректное значение %s=%q: %w", key, part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
