package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/respond"
	"github.com/Totarae/PersonalAccount/internal/service"
)

// GetShelfIDs возвращает идентификаторы всех полок пользователя.
func (h *Handler) GetShelfIDs(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	ids, err := h.Shelves.ListShelfIDs(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, model.ShelfIDsResponse{ID: ids})
}

// GetShelves возвращает полки с первыми тремя закладками.
func (h *Handler) GetShelves(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	views, err := h.Shelves.ListShelves(r.Context(), userID)
	if errors.Is(err, service.ErrNoShelves) && !h.EmptyShelvesNotFound {
		respond.JSON(w, http.StatusOK, model.ShelvesResponse{Shelves: []model.ShelfView{}})
		return
	}
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, model.ShelvesResponse{Shelves: views})
}

// GetBookmarks возвращает все закладки полки ?shelf_id=.
func (h *Handler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	shelfID, err := strconv.ParseInt(r.URL.Query().Get("shelf_id"), 10, 64)
	if err != nil || shelfID <= 0 {
		respond.Error(w, h.Logger, apperrors.Validation("shelf_id must be a positive integer"))
		return
	}

	bookmarks, err := h.Shelves.ListBookmarks(r.Context(), userID, shelfID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	resp := model.BookmarksResponse{Bookmarks: make([]model.BookmarkResponse, 0, len(bookmarks))}
	for _, b := range bookmarks {
		resp.Bookmarks = append(resp.Bookmarks, model.BookmarkResponse{ID: b.ID, Title: b.Title})
	}
	respond.JSON(w, http.StatusOK, resp)
}

// CreateShelf создаёт полку.
func (h *Handler) CreateShelf(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.CreateShelfRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	id, err := h.Shelves.CreateShelf(r.Context(), userID, req.Name)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, model.CreateShelfResponse{Message: "Shelf successfully created", ID: id})
}

// AddBookmark кладёт закладку на полку.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.AddBookmarkRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	if err := h.Shelves.AddBookmark(r.Context(), userID, req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	h.message(w, "Bookmark successfully added")
}

// RemoveBookmark убирает закладку с полки.
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.RemoveBookmarkRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	if err := h.Shelves.RemoveBookmark(r.Context(), userID, req.ShelfID, req.BookmarkID); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	h.message(w, "Bookmark removed from shelf")
}

// DeleteShelf удаляет полку вместе с её закладками.
func (h *Handler) DeleteShelf(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	var req model.RemoveShelfRequest
	if err := h.decode(w, r, &req); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}

	removed, err := h.Shelves.DeleteShelf(r.Context(), userID, req.ShelfID)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	if !removed {
		h.message(w, "Nothing to remove")
		return
	}
	h.message(w, "Shelf removed")
}
