package handlers

import (
	"net/http"

	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/respond"
)

// Register регистрирует пользователя из заголовка x-user-id.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	if err := h.Users.Register(r.Context(), userID, req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	h.message(w, "User successfully registered")
}

// GetUser возвращает данные пользователя.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	u, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, model.UserResponse{
		Login:     u.Login,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}
