package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/flippy-trade-api/internal/metrics"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// Service движок жизненного цикла сделок: запросы, бронирование,
// двустороннее подтверждение передачи и отзывы.
//
// Service не хранит состояние между вызовами: каждая операция читает
// текущее состояние из Store, проверяет предусловия и записывает результат
// под блокировкой объявления.
type Service struct {
	store    Store
	now      func() time.Time
	newID    func() uuid.UUID
	window   time.Duration
	log      logrus.FieldLogger
	notifier Notifier
	metrics  *metrics.Metrics
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHandoffWindow задает окно подтверждения передачи
func WithHandoffWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithLogger задает логгер
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithNotifier задает получателя событий
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetrics задает метрики
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService создает новый экземпляр Service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		newID:    uuid.New,
		window:   models.HandoffWindow,
		log:      logrus.StandardLogger(),
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandoffWindow возвращает окно подтверждения передачи
func (s *Service) HandoffWindow() time.Duration {
	return s.window
}

// Now возвращает текущее время по часам сервиса
func (s *Service) Now() time.Time {
	return s.now()
}

// done учитывает результат операции в метриках и возвращает err без изменений
func (s *Service) done(operation string, err error) error {
	if err != nil {
		s.metrics.Failure(operation, Kind(err))
		return err
	}
	s.metrics.Transition(operation)
	return nil
}

func (s *Service) emit(events ...TradeEvent) {
	for _, e := range events {
		s.notifier.Notify(e)
	}
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}
