package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/database"
	"github.com/jackc/pgx/v5"
)

// TagRepository хранит словарь тегов и теги пользователей в PostgreSQL.
type TagRepository struct {
	DB database.DBInterface
}

// NewTagRepository создаёт новый экземпляр TagRepository.
func NewTagRepository(db database.DBInterface) *TagRepository {
	return &TagRepository{DB: db}
}

// MergeTags связывает пользователя с тегами names в одной транзакции:
// сначала недостающие имена добавляются в словарь, затем по имени
// находятся теги и добавляются недостающие связи. Существующие теги и
// связи не трогаются, поэтому повторный вызов ничего не меняет.
// Возвращает число связей пользователя после слияния.
func (r *TagRepository) MergeTags(ctx context.Context, userID int64, names []string, now time.Time) (int, error) {
	var count int
	err := withTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tags (name) SELECT unnest($1::text[])
             ON CONFLICT (name) DO NOTHING`,
			names,
		); err != nil {
			return fmt.Errorf("failed to insert tags: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_tags (user_id, tag_id, created_at)
             SELECT $1, t.id, $3 FROM tags t WHERE t.name = ANY($2)
             ON CONFLICT (user_id, tag_id) DO NOTHING`,
			userID, names, now,
		); err != nil {
			return fmt.Errorf("failed to insert user tags: %w", err)
		}

		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM user_tags WHERE user_id = $1`, userID,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to count user tags: %w", err)
		}
		return nil
	})
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return 0, userNotFound(userID)
		}
		return 0, apperrors.Store("failed to merge tags", err)
	}
	return count, nil
}

// ListTags возвращает имена тегов пользователя.
func (r *TagRepository) ListTags(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT t.name
              FROM tags t
              JOIN user_tags ut ON ut.tag_id = t.id
              WHERE ut.user_id = $1
              ORDER BY t.name`

	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Store("failed to query tags", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.Store("failed to scan tags", err)
	}
	return names, nil
}

// RemoveTags удаляет связи пользователя с тегами names. Сами теги остаются
// в словаре.
func (r *TagRepository) RemoveTags(ctx context.Context, userID int64, names []string) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM user_tags ut
         USING tags t
         WHERE ut.tag_id = t.id AND ut.user_id = $1 AND t.name = ANY($2)`,
		userID, names,
	)
	if err != nil {
		return 0, apperrors.Store("failed to delete user tags", err)
	}
	return tag.RowsAffected(), nil
}
