package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/config"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// InitDB создает пул соединений с базой данных. Postgres в docker-compose
// может подняться позже сервиса, поэтому подключение повторяется.
func InitDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	log := logrus.WithFields(logrus.Fields{
		"host":     cfg.DatabaseConfig.Host,
		"database": cfg.DatabaseConfig.Name,
	})
	log.Info("Подключение к базе данных")

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = cfg.DatabaseConfig.MaxConns
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = connect(ctx, poolConfig)
		if err == nil {
			log.WithField("attempt", attempt).Info("✅ Успешное подключение к базе данных")
			return pool, nil
		}

		log.WithError(err).Warnf("Попытка подключения %d/%d не удалась", attempt, connectAttempts)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	return nil, fmt.Errorf("не удалось подключиться к базе данных за %d попыток: %w", connectAttempts, err)
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}
	return pool, nil
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
