package domain

import "time"

// Question is one practice exercise. Prompt is the arithmetic expression
// shown to the player and walked on the number line; Answer is the value
// the completed walk lands on.
type Question struct {
	ID        int64     `db:"id" json:"id"`
	Level     int       `db:"level" json:"level"`
	Prompt    string    `db:"prompt" json:"prompt"`
	Answer    int       `db:"answer" json:"answer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
