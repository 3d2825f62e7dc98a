package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgForeignKeyViolation означает нарушение внешнего ключа, например связь с
// несуществующим пользователем.
const pgForeignKeyViolation = "23503"

// withTx выполняет fn в транзакции. Любая ошибка откатывает все операции fn.
func withTx(ctx context.Context, db database.DBInterface, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// userNotFound возвращает ошибку об отсутствии пользователя, общую для всех ручек.
func userNotFound(userID int64) error {
	return apperrors.NotFound(fmt.Sprintf("User with id %d not found", userID))
}
