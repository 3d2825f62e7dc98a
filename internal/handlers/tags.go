package handlers

import (
	"net/http"

	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"go.uber.org/zap"
)

// UpdateTags добавляет пользователю теги, уже существующие пропускаются.
func (h *Handler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.TagsRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	count, err := h.Tags.MergeTags(r.Context(), userID, req.Tags)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	h.Logger.Debug("Теги обновлены", zap.Int64("user_id", userID), zap.Int("total", count))
	h.message(w, "Tags successfully saved")
}

// GetTags возвращает теги пользователя.
func (h *Handler) GetTags(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	tags, err := h.Tags.GetTags(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, model.TagsResponse{Tags: tags})
}

// DeleteTags убирает у пользователя переданные теги.
func (h *Handler) DeleteTags(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.TagsRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	if _, err := h.Tags.DeleteTags(r.Context(), userID, req.Tags); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	h.message(w, "Tags successfully deleted")
}
