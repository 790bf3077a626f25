package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rajivgeraev/flippy-trade-api/internal/config"
	"github.com/rajivgeraev/flippy-trade-api/internal/db"
	"github.com/rajivgeraev/flippy-trade-api/internal/db/memstore"
	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/metrics"
	"github.com/rajivgeraev/flippy-trade-api/internal/moderation"
	"github.com/rajivgeraev/flippy-trade-api/internal/server"
	"github.com/rajivgeraev/flippy-trade-api/internal/utils"
	"github.com/rajivgeraev/flippy-trade-api/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// tradeStore хранилище сделок, пользователей и жалоб
type tradeStore interface {
	lifecycle.Store
	moderation.Store
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("❌ Ошибка конфигурации")
	}

	logrus.SetLevel(cfg.LogLevel)
	if !cfg.IsDevelopment() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logrus.WithError(err).Fatal("❌ Сервис остановлен с ошибкой")
	}
	logrus.Info("Сервис остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	log := logrus.StandardLogger()
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	wsManager := websocket.NewManager(log.WithField("component", "websocket"))

	engine := lifecycle.NewService(store,
		lifecycle.WithHandoffWindow(cfg.HandoffWindow),
		lifecycle.WithLogger(log.WithField("component", "lifecycle")),
		lifecycle.WithNotifier(wsManager),
		lifecycle.WithMetrics(metrics.New(reg)),
	)
	if len(cfg.AdminTelegramIDs) == 0 {
		logrus.Warn("⚠️ ADMIN_TELEGRAM_IDS не задан, модерация недоступна")
	}
	mod := moderation.NewService(store, engine, cfg.AdminTelegramIDs, log.WithField("component", "moderation"))

	app := server.NewApp(server.Deps{
		Config:     cfg,
		Engine:     engine,
		Moderation: mod,
		Users:      store,
		JWTService: jwtService,
		Gatherer:   reg,
		AccessLog:  true,
	})

	wsServer := &http.Server{
		Addr:              ":" + cfg.WSPort,
		Handler:           websocket.NewHandler(wsManager, jwtService, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("port", cfg.Port).Info("✅ Flippy Trade API запущен")
		return app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	})

	g.Go(func() error {
		logrus.WithField("port", cfg.WSPort).Info("✅ WebSocket сервер запущен")
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Завершение работы...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		wsManager.Shutdown()
		return errors.Join(
			app.ShutdownWithContext(shutdownCtx),
			wsServer.Shutdown(shutdownCtx),
		)
	})

	return g.Wait()
}

// openStore выбирает хранилище по STORAGE
func openStore(ctx context.Context, cfg *config.Config) (tradeStore, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logrus.Warn("⚠️ Используется хранилище в памяти, данные не сохраняются между запусками")
		return memstore.New(), func() {}, nil
	}

	// Инициализируем базу данных
	pool, err := db.InitDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db.NewStore(pool), pool.Close, nil
}
