package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
	"go.uber.org/zap"
)

// UserService регистрирует пользователей и проверяет их существование.
type UserService struct {
	Repo   UserRepository
	Logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	return &UserService{Repo: repo, Logger: logger}
}

// Register создаёт пользователя с идентификатором, пришедшим от клиента.
func (s *UserService) Register(ctx context.Context, userID int64, req model.RegisterRequest) error {
	u := &model.User{
		ID:        userID,
		Login:     trimmed(req.Login),
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return logStoreError(s.Logger, "Не удалось зарегистрировать пользователя", err, zap.Int64("user_id", userID))
	}
	s.Logger.Info("Пользователь зарегистрирован", zap.Int64("user_id", userID))
	return nil
}

// Get возвращает пользователя.
func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, logStoreError(s.Logger, "Не удалось получить пользователя", err, zap.Int64("user_id", userID))
	}
	return u, nil
}

// RequireUser возвращает NotFound, если пользователя нет.
func (s *UserService) RequireUser(ctx context.Context, userID int64) error {
	return requireUser(ctx, s.Repo, s.Logger, userID)
}

func requireUser(ctx context.Context, repo UserRepository, logger *zap.Logger, userID int64) error {
	exists, err := repo.UserExists(ctx, userID)
	if err != nil {
		return logStoreError(logger, "Не удалось проверить пользователя", err, zap.Int64("user_id", userID))
	}
	if !exists {
		return apperrors.NotFound(userNotFoundMessage(userID))
	}
	return nil
}

// logStoreError пишет в лог ошибки хранилища и возвращает err без изменений.
// Ошибки клиента (валидация, не найдено) не логируются.
func logStoreError(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	if apperrors.KindOf(err) == apperrors.KindStore {
		logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

func userNotFoundMessage(userID int64) string {
	return fmt.Sprintf("User with id %d not found", userID)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
