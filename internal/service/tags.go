package service

import (
	"context"
	"strings"
	"time"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"go.uber.org/zap"
)

var (
	// ErrEmptyTags: после отбрасывания пустых имён не осталось ни одного тега.
	ErrEmptyTags = apperrors.Validation("Tags list cannot be empty or some tags is empty")
	// ErrEmptyTagsToDelete: нечего удалять.
	ErrEmptyTagsToDelete = apperrors.Validation("Tags list cannot be empty")
	// ErrNoTags: у пользователя нет тегов.
	ErrNoTags = apperrors.NotFound("No tags found for this user")
)

// NormalizeTags обрезает пробелы, отбрасывает пустые имена и повторы.
// Порядок первых вхождений сохраняется.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// TagService синхронизирует теги пользователя.
type TagService struct {
	Users  UserRepository
	Repo   TagRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewTagService(users UserRepository, repo TagRepository, logger *zap.Logger) *TagService {
	return &TagService{
		Users:  users,
		Repo:   repo,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// MergeTags связывает пользователя ровно с переданными тегами, не создавая
// повторов ни в словаре, ни в связях. Пустой после нормализации список
// отклоняется до обращения к хранилищу. Возвращает число тегов пользователя.
func (s *TagService) MergeTags(ctx context.Context, userID int64, names []string) (int, error) {
	names = NormalizeTags(names)
	if len(names) == 0 {
		return 0, ErrEmptyTags
	}
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return 0, err
	}

	count, err := s.Repo.MergeTags(ctx, userID, names, s.Now())
	if err != nil {
		return 0, logStoreError(s.Logger, "Не удалось сохранить теги", err,
			zap.Int64("user_id", userID), zap.Strings("tags", names))
	}
	s.Logger.Debug("Теги сохранены", zap.Int64("user_id", userID), zap.Int("total", count))
	return count, nil
}

// GetTags возвращает теги пользователя или ErrNoTags.
func (s *TagService) GetTags(ctx context.Context, userID int64) ([]string, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return nil, err
	}

	names, err := s.Repo.ListTags(ctx, userID)
	if err != nil {
		return nil, logStoreError(s.Logger, "Не удалось получить теги", err, zap.Int64("user_id", userID))
	}
	if len(names) == 0 {
		return nil, ErrNoTags
	}
	return names, nil
}

// DeleteTags убирает у пользователя переданные теги. Словарь не меняется.
func (s *TagService) DeleteTags(ctx context.Context, userID int64, names []string) (int64, error) {
	names = NormalizeTags(names)
	if len(names) == 0 {
		return 0, ErrEmptyTagsToDelete
	}
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return 0, err
	}

	removed, err := s.Repo.RemoveTags(ctx, userID, names)
	if err != nil {
		return 0, logStoreError(s.Logger, "Не удалось удалить теги", err, zap.Int64("user_id", userID))
	}
	return removed, nil
}
