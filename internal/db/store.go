package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
)

// querier общее подмножество pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store хранилище движка сделок в PostgreSQL. Блокировка объявления
// реализована через SELECT ... FOR UPDATE внутри транзакции.
type Store struct {
	reader
	pool *pgxpool.Pool
}

var _ lifecycle.Store = (*Store)(nil)

// NewStore создает хранилище поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{reader: reader{q: pool}, pool: pool}
}

// reader запросы на чтение, общие для пула и транзакции
type reader struct {
	q querier
}

// pgTx операции внутри транзакции с заблокированной строкой объявления
type pgTx struct {
	reader
}

var _ lifecycle.Tx = (*pgTx)(nil)

// WithItemLock открывает транзакцию, блокирует строку объявления и выполняет fn.
// Транзакция фиксируется, только если fn вернула nil.
func (s *Store) WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(tx lifecycle.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM items WHERE id = $1 FOR UPDATE`, itemID).Scan(&id)
		if err != nil {
			return notFound(err, "объявление", itemID)
		}
		return fn(&pgTx{reader{q: tx}})
	})
}

// notFound превращает pgx.ErrNoRows в lifecycle.ErrNotFound
func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", lifecycle.ErrNotFound, what, id)
	}
	return fmt.Errorf("ошибка при получении (%s %s): %w", what, id, err)
}

// mustAffect возвращает ErrNotFound, если UPDATE не затронул ни одной строки
func mustAffect(tag pgconn.CommandTag, what string, id uuid.UUID) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", lifecycle.ErrNotFound, what, id)
	}
	return nil
}

const uniqueViolation = "23505"

// mapConstraint переводит нарушения уникальных индексов в ошибки движка
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "transactions_one_holding_per_item":
		return fmt.Errorf("%w: %s", lifecycle.ErrItemAlreadyReserved, pgErr.Detail)
	case "reviews_one_per_author":
		return fmt.Errorf("%w: %s", lifecycle.ErrDuplicateReview, pgErr.Detail)
	}
	return err
}

// conds собирает WHERE из необязательных условий фильтра.
// В expr номер параметра подставляется через %[1]d.
type conds struct {
	parts []string
	args  []any
}

func (c *conds) add(expr string, v any) {
	c.args = append(c.args, v)
	c.parts = append(c.parts, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

// collectRows читает все строки через scan и закрывает rows
func collectRows[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
