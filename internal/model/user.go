package model

import "time"

// User is a Telegram user that has interacted with the bot at least once.
type User struct {
	UserID    int64     `json:"user_id"`
	FirstName string    `json:"first_name"`
	UserName  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the operator-facing summary returned by the statics command.
type Stats struct {
	TotalUsers    int
	UsersToday    int
	TotalOpens    int
	OpensToday    int
	UniqueOpens24 int
	TotalBundles  int
}
