package model

import "time"

// Tag представляет элемент общего словаря тегов.
type Tag struct {
	ID   int64
	Name string
}

// UserTag представляет связь пользователя с тегом.
type UserTag struct {
	UserID    int64
	TagID     int64
	CreatedAt time.Time
}
