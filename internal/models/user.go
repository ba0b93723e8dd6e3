package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the public account profile stored in PostgreSQL. Recovery data
// lives in a separate encrypted table and is never returned in JSON.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"-"`
}
