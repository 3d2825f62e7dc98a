package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/auth"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"github.com/Totarae/PersonalAccount/internal/service"
	"github.com/Totarae/PersonalAccount/internal/validation"
	"go.uber.org/zap"
)

// maxBodySize ограничивает тело JSON-запросов.
const maxBodySize = 1 << 20

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обслуживает HTTP API личного кабинета.
type Handler struct {
	Users     *service.UserService
	Shelves   *service.ShelfService
	Tags      *service.TagService
	Avatars   *service.AvatarService
	Store     Pinger
	Validator *validation.Validator
	Logger    *zap.Logger

	// EmptyShelvesNotFound: отвечать 404 на get_shelves без закладок
	// вместо пустого списка.
	EmptyShelvesNotFound bool
}

// NewHandler создаёт обработчик. avatars может быть nil, если объектное
// хранилище не настроено.
func NewHandler(
	users *service.UserService,
	shelves *service.ShelfService,
	tags *service.TagService,
	avatars *service.AvatarService,
	store Pinger,
	logger *zap.Logger,
	emptyShelvesNotFound bool,
) *Handler {
	return &Handler{
		Users:                users,
		Shelves:              shelves,
		Tags:                 tags,
		Avatars:              avatars,
		Store:                store,
		Validator:            validation.New(),
		Logger:               logger,
		EmptyShelvesNotFound: emptyShelvesNotFound,
	}
}

var errInvalidBody = apperrors.Validation("invalid request body")

// decode читает JSON-тело запроса в dst и проверяет его валидатором.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		h.Logger.Debug("Не удалось разобрать тело запроса", zap.Error(err))
		return errInvalidBody
	}
	return h.Validator.Validate(dst)
}

// userID возвращает id пользователя, положенный auth.Middleware.
func (h *Handler) userID(r *http.Request) (int64, error) {
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		return id, nil
	}
	return auth.ParseUserID(r)
}

func (h *Handler) message(w http.ResponseWriter, msg string) {
	respond.JSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// Ping проверяет соединение с хранилищем.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Error("Хранилище недоступно", zap.Error(err))
		respond.Detail(w, http.StatusInternalServerError, "database unavailable")
		return
	}
	h.message(w, "OK")
}
