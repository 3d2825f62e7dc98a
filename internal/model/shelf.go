package model

// Shelf представляет полку закладок пользователя.
type Shelf struct {
	ID     int64
	UserID int64
	Name   string
}

// Bookmark представляет закладку. Идентификатор задаёт вызывающая сторона.
type Bookmark struct {
	ID    int64
	Title string
}

// ShelfRow представляет плоскую строку соединения полка × закладка.
type ShelfRow struct {
	ShelfID       int64
	ShelfName     string
	BookmarkTitle string
}

// ShelfView представляет полку с первыми закладками для выдачи клиенту.
type ShelfView struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Bookmarks []string `json:"bookmarks"`
}
