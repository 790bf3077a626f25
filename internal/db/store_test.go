package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-trade-api/internal/lifecycle"
)

func TestConds(t *testing.T) {
	var empty conds
	require.Equal(t, "", empty.where())

	var c conds
	id := uuid.New()
	c.add("item_id = $%[1]d", id)
	c.add("(buyer_id = $%[1]d OR seller_id = $%[1]d)", id)
	c.add("status = ANY($%[1]d)", []string{"reserved"})

	require.Equal(t, " WHERE item_id = $1 AND (buyer_id = $2 OR seller_id = $2) AND status = ANY($3)", c.where())
	require.Len(t, c.args, 3)
}

func TestMapConstraint(t *testing.T) {
	wrap := func(constraint string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})
	}

	require.ErrorIs(t, mapConstraint(wrap("transactions_one_holding_per_item")), lifecycle.ErrItemAlreadyReserved)
	require.ErrorIs(t, mapConstraint(wrap("reviews_one_per_author")), lifecycle.ErrDuplicateReview)

	other := wrap("users_telegram_id_key")
	require.Equal(t, other, mapConstraint(other))

	plain := errors.New("connection reset")
	require.Equal(t, plain, mapConstraint(plain))
}

func TestNotFound(t *testing.T) {
	id := uuid.New()
	require.ErrorIs(t, notFound(pgx.ErrNoRows, "сделка", id), lifecycle.ErrNotFound)

	err := notFound(errors.New("timeout"), "сделка", id)
	require.NotErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestMustAffect(t *testing.T) {
	id := uuid.New()
	require.ErrorIs(t, mustAffect(pgconn.NewCommandTag("UPDATE 0"), "запрос", id), lifecycle.ErrNotFound)
	require.NoError(t, mustAffect(pgconn.NewCommandTag("UPDATE 1"), "запрос", id))
}

func TestMigrationsEmbedded(t *testing.T) {
	content, err := migrationFS.ReadFile("migrations/0001_init.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(content), "transactions_one_holding_per_item")
	require.Contains(t, string(content), "reviews_one_per_author")

	content, err = migrationFS.ReadFile("migrations/0002_messages_reports.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS messages")
	require.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS reports")
}
