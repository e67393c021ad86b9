package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntrySide tells which way an open item points.
type EntrySide string

const (
	// SideDebtor means the counterparty owes the user.
	SideDebtor EntrySide = "debtor"
	// SideCreditor means the user owes the counterparty.
	SideCreditor EntrySide = "creditor"
)

// Opposite returns the other side.
func (s EntrySide) Opposite() EntrySide {
	if s == SideDebtor {
		return SideCreditor
	}
	return SideDebtor
}

// LedgerEntry is one open item between the user and a counterparty.
// At most one entry exists per (user, side, counterparty); an entry whose
// amount and quantity are both exactly zero is removed from the store.
type LedgerEntry struct {
	UserID       uuid.UUID       `json:"user_id"`
	Side         EntrySide       `json:"side"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitRate     decimal.Decimal `json:"unit_rate"` // informational, last rate applied
	OriginTrxID  uuid.UUID       `json:"origin_trx_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsZero reports whether both measures have reached exactly zero.
func (e *LedgerEntry) IsZero() bool {
	return e.Amount.IsZero() && e.Quantity.IsZero()
}
