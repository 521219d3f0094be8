package user

import "time"

type User struct {
	ID        int64     `json:"user_id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
