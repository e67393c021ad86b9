package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner of one ledger. Every account, partner, ledger entry
// and transaction belongs to exactly one user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
