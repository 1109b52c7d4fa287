package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain model for an account. The password hash is never
// serialized; session tokens live in the auth session store, not here.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"created_at"`
}
