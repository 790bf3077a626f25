package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rajivgeraev/flippy-trade-api/internal/models"
)

const userColumns = `id, telegram_id, username, first_name, last_name, avatar_url, created_at, last_login_at`

// scanUser читает пользователя, nullable поля превращаются в пустые строки
func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user                                     models.User
		telegramID                               pgtype.Int8
		username, firstName, lastName, avatarURL pgtype.Text
	)
	err := row.Scan(
		&user.ID, &telegramID, &username, &firstName, &lastName, &avatarURL,
		&user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if telegramID.Valid {
		user.TelegramID = telegramID.Int64
	}
	if username.Valid {
		user.Username = username.String
	}
	if firstName.Valid {
		user.FirstName = firstName.String
	}
	if lastName.Valid {
		user.LastName = lastName.String
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}

	return &user, nil
}

// UpsertTelegramUser создает нового пользователя через Telegram или обновляет
// профиль и время входа существующего
func (s *Store) UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (id, telegram_id, username, first_name, last_name, avatar_url, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			last_login_at = CURRENT_TIMESTAMP
		RETURNING `+userColumns,
		uuid.New(), p.TelegramID, p.Username, p.FirstName, p.LastName, p.PhotoURL))
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении пользователя Telegram: %w", err)
	}
	return user, nil
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "пользователь", id)
	}
	return user, nil
}
