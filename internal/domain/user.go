package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Only the password hash is ever
// stored; hashing and verification happen in the auth layer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
