package repositories

import (
	"context"
	"fmt"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/database"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/jackc/pgx/v5"
)

// ShelfRepository хранит полки и закладки в PostgreSQL.
type ShelfRepository struct {
	DB database.DBInterface
}

// NewShelfRepository создаёт новый экземпляр ShelfRepository.
func NewShelfRepository(db database.DBInterface) *ShelfRepository {
	return &ShelfRepository{DB: db}
}

// ListShelfIDs возвращает идентификаторы всех полок пользователя.
func (r *ShelfRepository) ListShelfIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.DB.Query(ctx, `SELECT id FROM shelf WHERE fk_user = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, apperrors.Store("failed to query shelves", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, apperrors.Store("failed to scan shelves", err)
	}
	return ids, nil
}

// ListShelfRows возвращает плоские строки полка × закладка пользователя,
// сгруппированные по полке в порядке добавления закладок.
// Полки без закладок в выборку не попадают.
func (r *ShelfRepository) ListShelfRows(ctx context.Context, userID int64) ([]model.ShelfRow, error) {
	query := `SELECT s.id, s.name, b.title
              FROM shelf s
              JOIN bookmarks_inshelf bis ON bis.fk_shelf = s.id
              JOIN bookmarks b ON b.id = bis.fk_bookmark
              WHERE s.fk_user = $1
              ORDER BY s.id, bis.added_seq`

	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Store("failed to query shelves with bookmarks", err)
	}
	defer rows.Close()

	var result []model.ShelfRow
	for rows.Next() {
		var row model.ShelfRow
		if err := rows.Scan(&row.ShelfID, &row.ShelfName, &row.BookmarkTitle); err != nil {
			return nil, apperrors.Store("failed to scan row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("failed to read rows", err)
	}
	return result, nil
}

// ShelfExists проверяет, что полка существует и принадлежит пользователю.
func (r *ShelfRepository) ShelfExists(ctx context.Context, userID, shelfID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM shelf WHERE id = $1 AND fk_user = $2)`
	if err := r.DB.QueryRow(ctx, query, shelfID, userID).Scan(&exists); err != nil {
		return false, apperrors.Store("database error", err)
	}
	return exists, nil
}

// ListBookmarks возвращает закладки полки в порядке добавления.
func (r *ShelfRepository) ListBookmarks(ctx context.Context, shelfID int64) ([]model.Bookmark, error) {
	query := `SELECT b.id, b.title
              FROM bookmarks_inshelf bis
              JOIN bookmarks b ON b.id = bis.fk_bookmark
              WHERE bis.fk_shelf = $1
              ORDER BY bis.added_seq`

	rows, err := r.DB.Query(ctx, query, shelfID)
	if err != nil {
		return nil, apperrors.Store("failed to query bookmarks", err)
	}

	bookmarks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Bookmark, error) {
		var b model.Bookmark
		err := row.Scan(&b.ID, &b.Title)
		return b, err
	})
	if err != nil {
		return nil, apperrors.Store("failed to scan bookmarks", err)
	}
	return bookmarks, nil
}

// CreateShelf создаёт полку и возвращает её id.
func (r *ShelfRepository) CreateShelf(ctx context.Context, userID int64, name string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `INSERT INTO shelf (fk_user, name) VALUES ($1, $2) RETURNING id`, userID, name).Scan(&id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return 0, userNotFound(userID)
		}
		return 0, apperrors.Store("database insert error", err)
	}
	return id, nil
}

// AddBookmark кладёт закладку на полку. Закладка создаётся, если её ещё нет;
// повторное добавление на ту же полку ничего не меняет.
func (r *ShelfRepository) AddBookmark(ctx context.Context, shelfID int64, b model.Bookmark) error {
	err := withTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO bookmarks (id, title) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			b.ID, b.Title,
		); err != nil {
			return fmt.Errorf("failed to insert bookmark: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO bookmarks_inshelf (fk_shelf, fk_bookmark) VALUES ($1, $2)
             ON CONFLICT (fk_shelf, fk_bookmark) DO NOTHING`,
			shelfID, b.ID,
		); err != nil {
			return fmt.Errorf("failed to link bookmark: %w", err)
		}
		return nil
	})
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NotFound("Shelf not found")
		}
		return apperrors.Store("failed to add bookmark", err)
	}
	return nil
}

// RemoveBookmark убирает закладку с полки. Отсутствие связи ошибкой не считается.
func (r *ShelfRepository) RemoveBookmark(ctx context.Context, shelfID, bookmarkID int64) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM bookmarks_inshelf WHERE fk_shelf = $1 AND fk_bookmark = $2`,
		shelfID, bookmarkID,
	)
	if err != nil {
		return apperrors.Store("failed to remove bookmark", err)
	}
	return nil
}

// DeleteShelf удаляет полку пользователя вместе со связями в одной транзакции.
// Возвращает false, если у пользователя такой полки нет.
func (r *ShelfRepository) DeleteShelf(ctx context.Context, userID, shelfID int64) (bool, error) {
	var removed bool
	err := withTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM bookmarks_inshelf
             WHERE fk_shelf = $1 AND EXISTS (SELECT 1 FROM shelf WHERE id = $1 AND fk_user = $2)`,
			shelfID, userID,
		); err != nil {
			return fmt.Errorf("failed to delete shelf links: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM shelf WHERE id = $1 AND fk_user = $2`, shelfID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete shelf: %w", err)
		}
		removed = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, apperrors.Store("failed to delete shelf", err)
	}
	return removed, nil
}
