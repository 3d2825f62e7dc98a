package service

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"io"
	"time"

	"github.com/Totarae/PersonalAccount/internal/model"
)

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// ShelfRepository описывает хранилище полок и закладок.
type ShelfRepository interface {
	ListShelfIDs(ctx context.Context, userID int64) ([]int64, error)
	ListShelfRows(ctx context.Context, userID int64) ([]model.ShelfRow, error)
	ShelfExists(ctx context.Context, userID, shelfID int64) (bool, error)
	ListBookmarks(ctx context.Context, shelfID int64) ([]model.Bookmark, error)
	CreateShelf(ctx context.Context, userID int64, name string) (int64, error)
	AddBookmark(ctx context.Context, shelfID int64, b model.Bookmark) error
	RemoveBookmark(ctx context.Context, shelfID, bookmarkID int64) error
	DeleteShelf(ctx context.Context, userID, shelfID int64) (bool, error)
}

// TagRepository описывает хранилище тегов. MergeTags должен выполнять обе фазы
// слияния атомарно.
type TagRepository interface {
	MergeTags(ctx context.Context, userID int64, names []string, now time.Time) (int, error)
	ListTags(ctx context.Context, userID int64) ([]string, error)
	RemoveTags(ctx context.Context, userID int64, names []string) (int64, error)
}

// ObjectStore описывает объектное хранилище файлов. GetLink возвращает
// apperrors.NotFound, если ключа нет.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	GetLink(ctx context.Context, key string) (string, error)
}
