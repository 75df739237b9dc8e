package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Nickname  string    `json:"nickname,omitempty" db:"nickname"`
	Gender    string    `json:"gender,omitempty" db:"gender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
