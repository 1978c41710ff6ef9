package domain

import "time"

// Player is a registered participant. Players are created on first
// login; there is no password, the name is the identity.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
