package model

import "time"

// User представляет пользователя. Идентификатор приходит от вызывающей стороны.
type User struct {
	ID        int64
	Login     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}
