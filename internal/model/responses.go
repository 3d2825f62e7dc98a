package model

// MessageResponse представляет ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// UserResponse содержит данные пользователя.
type UserResponse struct {
	Login     string `json:"login"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateShelfResponse представляет ответ на создание полки.
type CreateShelfResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ShelfIDsResponse содержит идентификаторы полок пользователя.
type ShelfIDsResponse struct {
	ID []int64 `json:"id"`
}

// BookmarkResponse представляет закладку на полке.
type BookmarkResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TagsResponse содержит теги пользователя.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// ShelvesResponse содержит полки пользователя с первыми закладками.
type ShelvesResponse struct {
	Shelves []ShelfView `json:"shelves"`
}

// BookmarksResponse содержит все закладки полки.
type BookmarksResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
}
