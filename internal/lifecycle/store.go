package lifecycle

import (
	"context"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

// Reader операции чтения хранилища. Get-методы возвращают ErrNotFound
// (возможно, обернутую) для неизвестного ID. Возвращаемые сущности - копии.
type Reader interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListItemsBySeller(ctx context.Context, sellerID uuid.UUID) ([]*models.Item, error)
	// Списки упорядочены по времени создания, старые первыми
	ListRequests(ctx context.Context, f models.RequestFilter) ([]*models.Request, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]*models.Transaction, error)
	ListReviews(ctx context.Context, f models.ReviewFilter) ([]*models.Review, error)
}

// Writer операции записи, доступные под блокировкой объявления
type Writer interface {
	UpdateItem(ctx context.Context, item *models.Item) error
	CreateRequest(ctx context.Context, r *models.Request) error
	UpdateRequest(ctx context.Context, r *models.Request) error
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	// CreateReview возвращает ErrDuplicateReview, если автор уже оценил сделку
	CreateReview(ctx context.Context, r *models.Review) error
}

// Tx согласованное представление хранилища в рамках одного заблокированного
// объявления. Записи становятся видны другим, только если колбэк
// WithItemLock вернул nil.
type Tx interface {
	Reader
	Writer
}

// Store хранилище, с которым работает движок сделок
type Store interface {
	Reader

	// WithItemLock выполняет fn последовательно относительно других вызовов
	// для того же объявления и применяет записи атомарно.
	// Для несуществующего объявления возвращает ErrNotFound.
	WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(tx Tx) error) error

	// CreateItem сохраняет новое объявление, блокировка не нужна
	CreateItem(ctx context.Context, item *models.Item) error

	// CreateMessage сохраняет сообщение, блокировка не нужна
	CreateMessage(ctx context.Context, m *models.Message) error
	// ListMessages возвращает переписку по запросу, старые первыми
	ListMessages(ctx context.Context, requestID uuid.UUID) ([]*models.Message, error)
	// MarkMessagesRead отмечает прочитанными сообщения запроса, адресованные receiverID
	MarkMessagesRead(ctx context.Context, requestID, receiverID uuid.UUID) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpsertTelegramUser создает пользователя по Telegram ID или обновляет профиль существующего
	UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error)
}
