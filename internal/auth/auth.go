// Package auth определяет пользователя запроса по заголовку x-user-id.
//
// Заголовок выставляет шлюз перед сервисом, поэтому подпись не
// проверяется: достаточно того, что id положительный, а существование
// пользователя проверяют сервисы.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"go.uber.org/zap"
)

// HeaderUserID содержит идентификатор пользователя.
const HeaderUserID = "x-user-id"

var (
	ErrMissingUserID = apperrors.Validation("x-user-id header is required")
	ErrInvalidUserID = apperrors.Validation("invalid x-user-id header")
)

type ctxKey struct{}

type Auth struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Auth {
	return &Auth{Logger: logger}
}

// ParseUserID достаёт id пользователя из заголовка запроса.
func ParseUserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		return 0, ErrMissingUserID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// Middleware отклоняет запросы без корректного x-user-id с кодом 400
// и кладёт id в контекст остальных.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := ParseUserID(r)
		if err != nil {
			a.Logger.Debug("Запрос без пользователя",
				zap.String("uri", r.RequestURI),
				zap.String(HeaderUserID, r.Header.Get(HeaderUserID)),
			)
			respond.Error(w, a.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID возвращает контекст с id пользователя.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext возвращает id пользователя, положенный Middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}
