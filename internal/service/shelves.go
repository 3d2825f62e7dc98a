package service

import (
	"context"
	"strings"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
	"go.uber.org/zap"
)

// ShelfPreviewLimit ограничивает число названий закладок на полке.
const ShelfPreviewLimit = 3

var (
	// ErrNoShelves: у пользователя нет полок с закладками.
	ErrNoShelves = apperrors.NotFound("No bookmarks found for this user")
	// ErrShelfNotFound: полки нет или она принадлежит другому пользователю.
	ErrShelfNotFound = apperrors.NotFound("Shelf not found")
)

// GroupShelves сворачивает плоские строки в полки. Новая группа начинается
// при смене id полки, поэтому строки одной полки должны идти подряд.
// В группе остаются первые limit названий, остальные отбрасываются;
// отрицательный limit считается нулём.
func GroupShelves(rows []model.ShelfRow, limit int) []model.ShelfView {
	limit = max(limit, 0)

	var views []model.ShelfView
	for _, row := range rows {
		if len(views) == 0 || views[len(views)-1].ID != row.ShelfID {
			views = append(views, model.ShelfView{
				ID:        row.ShelfID,
				Name:      row.ShelfName,
				Bookmarks: make([]string, 0, limit),
			})
		}
		last := &views[len(views)-1]
		if len(last.Bookmarks) < limit {
			last.Bookmarks = append(last.Bookmarks, row.BookmarkTitle)
		}
	}
	return views
}

// ShelfService управляет полками пользователя.
type ShelfService struct {
	Users  UserRepository
	Repo   ShelfRepository
	Logger *zap.Logger
}

func NewShelfService(users UserRepository, repo ShelfRepository, logger *zap.Logger) *ShelfService {
	return &ShelfService{Users: users, Repo: repo, Logger: logger}
}

// ListShelves возвращает полки пользователя с первыми закладками.
// Если ни на одной полке нет закладок, возвращает ErrNoShelves.
func (s *ShelfService) ListShelves(ctx context.Context, userID int64) ([]model.ShelfView, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return nil, err
	}

	rows, err := s.Repo.ListShelfRows(ctx, userID)
	if err != nil {
		return nil, logStoreError(s.Logger, "Не удалось получить полки", err, zap.Int64("user_id", userID))
	}
	if len(rows) == 0 {
		return nil, ErrNoShelves
	}
	return GroupShelves(rows, ShelfPreviewLimit), nil
}

// ListShelfIDs возвращает идентификаторы всех полок пользователя, включая пустые.
func (s *ShelfService) ListShelfIDs(ctx context.Context, userID int64) ([]int64, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return nil, err
	}

	ids, err := s.Repo.ListShelfIDs(ctx, userID)
	if err != nil {
		return nil, logStoreError(s.Logger, "Не удалось получить полки", err, zap.Int64("user_id", userID))
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// ListBookmarks возвращает все закладки полки пользователя.
func (s *ShelfService) ListBookmarks(ctx context.Context, userID, shelfID int64) ([]model.Bookmark, error) {
	if err := s.requireShelf(ctx, userID, shelfID); err != nil {
		return nil, err
	}

	bookmarks, err := s.Repo.ListBookmarks(ctx, shelfID)
	if err != nil {
		return nil, logStoreError(s.Logger, "Не удалось получить закладки", err, zap.Int64("shelf_id", shelfID))
	}
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}
	return bookmarks, nil
}

// CreateShelf создаёт полку и возвращает её id.
func (s *ShelfService) CreateShelf(ctx context.Context, userID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.Validation("Shelf name cannot be empty")
	}
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return 0, err
	}

	id, err := s.Repo.CreateShelf(ctx, userID, name)
	if err != nil {
		return 0, logStoreError(s.Logger, "Не удалось создать полку", err, zap.Int64("user_id", userID))
	}
	return id, nil
}

// AddBookmark кладёт закладку на полку пользователя.
func (s *ShelfService) AddBookmark(ctx context.Context, userID int64, req model.AddBookmarkRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apperrors.Validation("Bookmark title cannot be empty")
	}
	if err := s.requireShelf(ctx, userID, req.ShelfID); err != nil {
		return err
	}

	err := s.Repo.AddBookmark(ctx, req.ShelfID, model.Bookmark{ID: req.BookmarkID, Title: title})
	if err != nil {
		return logStoreError(s.Logger, "Не удалось добавить закладку", err,
			zap.Int64("shelf_id", req.ShelfID), zap.Int64("bookmark_id", req.BookmarkID))
	}
	return nil
}

// RemoveBookmark убирает закладку с полки пользователя.
func (s *ShelfService) RemoveBookmark(ctx context.Context, userID, shelfID, bookmarkID int64) error {
	if err := s.requireShelf(ctx, userID, shelfID); err != nil {
		return err
	}

	if err := s.Repo.RemoveBookmark(ctx, shelfID, bookmarkID); err != nil {
		return logStoreError(s.Logger, "Не удалось убрать закладку", err,
			zap.Int64("shelf_id", shelfID), zap.Int64("bookmark_id", bookmarkID))
	}
	return nil
}

// DeleteShelf удаляет полку пользователя. Возвращает false, если удалять нечего.
func (s *ShelfService) DeleteShelf(ctx context.Context, userID, shelfID int64) (bool, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return false, err
	}

	removed, err := s.Repo.DeleteShelf(ctx, userID, shelfID)
	if err != nil {
		return false, logStoreError(s.Logger, "Не удалось удалить полку", err, zap.Int64("shelf_id", shelfID))
	}
	return removed, nil
}

func (s *ShelfService) requireShelf(ctx context.Context, userID, shelfID int64) error {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return err
	}

	exists, err := s.Repo.ShelfExists(ctx, userID, shelfID)
	if err != nil {
		return logStoreError(s.Logger, "Не удалось проверить полку", err, zap.Int64("shelf_id", shelfID))
	}
	if !exists {
		return ErrShelfNotFound
	}
	return nil
}
