package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// maxAvatarSize ограничивает размер загружаемого аватара.
const maxAvatarSize = 5 << 20

var (
	errFileRequired = apperrors.Validation("file is required")
	errFileTooLarge = apperrors.Validation("file is too large")
	errNotImage     = apperrors.Validation("file must be an image")
)

// UploadIcon принимает multipart-поле file, сохраняет его как аватар
// пользователя и возвращает ссылку строкой JSON.
func (h *Handler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Debug("Нет файла в запросе", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, h.Logger, errFileTooLarge)
			return
		}
		respond.Error(w, h.Logger, errFileRequired)
		return
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		respond.Error(w, h.Logger, errFileTooLarge)
		return
	}

	mime, err := mimetype.DetectReader(file)
	if err != nil {
		respond.Error(w, h.Logger, errFileRequired)
		return
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		respond.Error(w, h.Logger, errNotImage)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respond.Error(w, h.Logger, apperrors.Store("failed to rewind upload", err))
		return
	}

	link, err := h.Avatars.Upload(r.Context(), userID, file, header.Size, mime.String())
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, link)
}

// GetIconLink возвращает ссылку на аватар пользователя.
func (h *Handler) GetIconLink(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	link, err := h.Avatars.GetLink(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, link)
}
