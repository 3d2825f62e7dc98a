package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/database"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/jackc/pgx/v5"
)

// UserRepository хранит пользователей в PostgreSQL.
type UserRepository struct {
	DB database.DBInterface
}

// NewUserRepository создаёт новый экземпляр UserRepository.
func NewUserRepository(db database.DBInterface) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser сохраняет пользователя. Повторная регистрация того же id
// возвращает AlreadyExists.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, login, first_name, last_name, created_at)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (id) DO NOTHING`

	tag, err := r.DB.Exec(ctx, query, u.ID, u.Login, u.FirstName, u.LastName, u.CreatedAt)
	if err != nil {
		return apperrors.Store("database insert error", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.AlreadyExists("User already exists")
	}
	return nil
}

// GetUser возвращает пользователя по id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, login, first_name, last_name, created_at FROM users WHERE id = $1`

	u := &model.User{}
	var login, firstName, lastName *string
	err := r.DB.QueryRow(ctx, query, id).Scan(&u.ID, &login, &firstName, &lastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, userNotFound(id)
		}
		return nil, apperrors.Store("database error", err)
	}
	u.Login, u.FirstName, u.LastName = deref(login), deref(firstName), deref(lastName)
	return u, nil
}

// UserExists проверяет наличие пользователя.
func (r *UserRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.Store("database error", err)
	}
	return exists, nil
}

// Ping проверяет доступность базы данных.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
