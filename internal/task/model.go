package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work owned by exactly one user. The owner is set from
// the authenticated identity at creation and never changes.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}
