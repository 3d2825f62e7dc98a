// Package respond пишет JSON-ответы сервиса.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
	"go.uber.org/zap"
)

// JSON кодирует payload и пишет его с кодом status.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Detail пишет ошибку в виде {"detail": msg}.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, model.ErrorResponse{Detail: msg})
}

// Error выбирает код ответа по виду ошибки. Ошибки хранилища уже
// залогированы сервисами, клиенту уходит только общий текст.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindStore {
		logger.Debug("Ответ с ошибкой хранилища", zap.Error(err))
	}
	Detail(w, kind.HTTPStatus(), apperrors.MessageOf(err))
}
