// Package memstore хранилище движка сделок в памяти процесса.
// Используется в тестах и при STORAGE=memory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// Store хранилище в памяти с блокировкой на уровне объявления
type Store struct {
	mu           sync.RWMutex
	items        map[uuid.UUID]*models.Item
	requests     map[uuid.UUID]*models.Request
	transactions map[uuid.UUID]*models.Transaction
	reviews      map[uuid.UUID]*models.Review
	messages     map[uuid.UUID]*models.Message
	reports      map[uuid.UUID]*models.Report
	users        map[uuid.UUID]*models.User
	telegram     map[int64]uuid.UUID

	locks *keyedMutex
	now   func() time.Time
}

var _ lifecycle.Store = (*Store)(nil)

// New создает пустое хранилище
func New() *Store {
	return &Store{
		items:        make(map[uuid.UUID]*models.Item),
		requests:     make(map[uuid.UUID]*models.Request),
		transactions: make(map[uuid.UUID]*models.Transaction),
		reviews:      make(map[uuid.UUID]*models.Review),
		messages:     make(map[uuid.UUID]*models.Message),
		reports:      make(map[uuid.UUID]*models.Report),
		users:        make(map[uuid.UUID]*models.User),
		telegram:     make(map[int64]uuid.UUID),
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

// WithItemLock выполняет fn под блокировкой объявления. Записи fn
// копятся в промежуточном слое и применяются, только если fn вернула nil.
func (s *Store) WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(tx lifecycle.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	_, ok := s.items[itemID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: объявление %s", lifecycle.ErrNotFound, itemID)
	}

	unlock := s.locks.Lock(itemID)
	defer unlock()

	t := newTx(s)
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.commit()
	return nil
}

// CreateItem сохраняет новое объявление
func (s *Store) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("объявление %s уже существует", item.ID)
	}
	s.items[item.ID] = item.Clone()
	return nil
}

// GetItem возвращает объявление по ID
func (s *Store) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: объявление %s", lifecycle.ErrNotFound, id)
	}
	return item.Clone(), nil
}

// GetRequest возвращает запрос по ID
func (s *Store) GetRequest(_ context.Context, id uuid.UUID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: запрос %s", lifecycle.ErrNotFound, id)
	}
	return r.Clone(), nil
}

// GetTransaction возвращает сделку по ID
func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("%w: сделка %s", lifecycle.ErrNotFound, id)
	}
	return t.Clone(), nil
}

// ListItemsBySeller возвращает объявления продавца
func (s *Store) ListItemsBySeller(_ context.Context, sellerID uuid.UUID) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.items, nil, func(i *models.Item) bool { return i.SellerID == sellerID }, itemCreated), nil
}

// ListRequests возвращает запросы по фильтру
func (s *Store) ListRequests(_ context.Context, f models.RequestFilter) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.requests, nil, f.Match, requestCreated), nil
}

// ListTransactions возвращает сделки по фильтру
func (s *Store) ListTransactions(_ context.Context, f models.TransactionFilter) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.transactions, nil, f.Match, transactionCreated), nil
}

// ListReviews возвращает отзывы по фильтру
func (s *Store) ListReviews(_ context.Context, f models.ReviewFilter) ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return collect(s.reviews, nil, f.Match, reviewCreated), nil
}

// GetUser возвращает пользователя по ID
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: пользователь %s", lifecycle.ErrNotFound, id)
	}
	c := *u
	return &c, nil
}

// UpsertTelegramUser создает пользователя по Telegram ID или обновляет его профиль
func (s *Store) UpsertTelegramUser(_ context.Context, p models.TelegramProfile) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var u *models.User
	if id, ok := s.telegram[p.TelegramID]; ok {
		u = s.users[id]
	} else {
		u = &models.User{ID: uuid.New(), TelegramID: p.TelegramID, CreatedAt: now}
		s.users[u.ID] = u
		s.telegram[p.TelegramID] = u.ID
	}

	u.Username = p.Username
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.AvatarURL = p.PhotoURL
	u.LastLoginAt = now

	c := *u
	return &c, nil
}

func itemCreated(i *models.Item) time.Time               { return i.CreatedAt }
func requestCreated(r *models.Request) time.Time         { return r.CreatedAt }
func transactionCreated(t *models.Transaction) time.Time { return t.CreatedAt }
func reviewCreated(r *models.Review) time.Time           { return r.CreatedAt }
func messageCreated(m *models.Message) time.Time         { return m.CreatedAt }
func reportCreated(r *models.Report) time.Time           { return r.CreatedAt }

type cloner[T any] interface {
	*T
	Clone() *T
}

// collect выбирает записи из base с учетом промежуточных записей staged
// и сортирует их по времени создания. Вызывать под s.mu.
func collect[T any, P cloner[T]](base, staged map[uuid.UUID]*T, match func(*T) bool, created func(*T) time.Time) []*T {
	seen := make(map[uuid.UUID]struct{}, len(staged))
	type row struct {
		id uuid.UUID
		v  *T
	}
	var rows []row

	for id, v := range staged {
		seen[id] = struct{}{}
		if match(v) {
			rows = append(rows, row{id, P(v).Clone()})
		}
	}
	for id, v := range base {
		if _, ok := seen[id]; ok {
			continue
		}
		if match(v) {
			rows = append(rows, row{id, P(v).Clone()})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		ci, cj := created(rows[i].v), created(rows[j].v)
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return rows[i].id.String() < rows[j].id.String()
	})

	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.v)
	}
	return out
}
