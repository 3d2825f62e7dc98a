package model

// RegisterRequest представляет тело запроса регистрации. Поля обязательны,
// но пустая строка допустима, поэтому они задаются указателями.
type RegisterRequest struct {
	Login     *string `json:"login" validate:"required,max=255"`
	FirstName *string `json:"first_name" validate:"required,max=255"`
	LastName  *string `json:"last_name" validate:"required,max=255"`
}

// CreateShelfRequest представляет тело запроса создания полки.
type CreateShelfRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// AddBookmarkRequest представляет запрос добавления закладки на полку.
type AddBookmarkRequest struct {
	BookmarkID int64  `json:"bookmark_id" validate:"required,gt=0"`
	Title      string `json:"title" validate:"required,max=1024"`
	ShelfID    int64  `json:"shelf_id" validate:"required,gt=0"`
}

// RemoveBookmarkRequest представляет запрос удаления закладки с полки.
type RemoveBookmarkRequest struct {
	BookmarkID int64 `json:"bookmark_id" validate:"required,gt=0"`
	ShelfID    int64 `json:"shelf_id" validate:"required,gt=0"`
}

// RemoveShelfRequest представляет запрос удаления полки.
type RemoveShelfRequest struct {
	ShelfID int64 `json:"shelf_id" validate:"required,gt=0"`
}

// TagsRequest содержит список тегов пользователя.
type TagsRequest struct {
	Tags []string `json:"tags"`
}
