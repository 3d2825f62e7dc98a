package service

import (
	"context"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// AvatarFolder задаёт папку аватаров в бакете.
const AvatarFolder = "icons"

// CreateKey собирает ключ объекта из папки и имени.
func CreateKey(folder, key string) string {
	return folder + "/" + key
}

// AvatarService хранит аватары пользователей в объектном хранилище.
type AvatarService struct {
	Users  UserRepository
	Store  ObjectStore
	Logger *zap.Logger
}

func NewAvatarService(users UserRepository, store ObjectStore, logger *zap.Logger) *AvatarService {
	return &AvatarService{Users: users, Store: store, Logger: logger}
}

// Upload сохраняет аватар пользователя и возвращает ссылку на него.
// Новый аватар заменяет прежний.
func (s *AvatarService) Upload(ctx context.Context, userID int64, body io.Reader, size int64, contentType string) (string, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return "", err
	}

	key := CreateKey(AvatarFolder, strconv.FormatInt(userID, 10))
	link, err := s.Store.Upload(ctx, key, body, size, contentType)
	if err != nil {
		return "", logStoreError(s.Logger, "Не удалось загрузить аватар", err, zap.String("key", key))
	}
	return link, nil
}

// GetLink возвращает ссылку на аватар пользователя.
func (s *AvatarService) GetLink(ctx context.Context, userID int64) (string, error) {
	if err := requireUser(ctx, s.Users, s.Logger, userID); err != nil {
		return "", err
	}

	key := CreateKey(AvatarFolder, strconv.FormatInt(userID, 10))
	link, err := s.Store.GetLink(ctx, key)
	if err != nil {
		return "", logStoreError(s.Logger, "Не удалось получить ссылку на аватар", err, zap.String("key", key))
	}
	return link, nil
}
