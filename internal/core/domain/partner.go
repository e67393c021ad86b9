package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is an external intermediary the user transacts through. Its
// running balance mirrors the value the partner currently holds on the
// user's behalf; a negative balance means the user owes the partner.
type Partner struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Phone     *string         `json:"phone,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
