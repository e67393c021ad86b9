package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrxType represents the direction of an economic event.
type TrxType string

const (
	TrxTypeSend    TrxType = "send"
	TrxTypeReceive TrxType = "receive"
)

// Valid reports whether t is a known transaction type.
func (t TrxType) Valid() bool {
	return t == TrxTypeSend || t == TrxTypeReceive
}

// Inverse returns the opposite transaction type.
func (t TrxType) Inverse() TrxType {
	if t == TrxTypeSend {
		return TrxTypeReceive
	}
	return TrxTypeSend
}

// Transaction is the immutable record of one economic event. Economic
// fields never change after creation; only Reversed and ReversedTrxID are
// set, and only once.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	SequenceNumber int64           `json:"sequence_number"`
	TrxType        TrxType         `json:"trx_type"`
	Sender         string          `json:"sender"`
	Receiver       string          `json:"receiver"`
	Amount         decimal.Decimal `json:"amount"`
	Rate           decimal.Decimal `json:"rate"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromAccount    string          `json:"from_account"`
	OnBehalfOf     *string         `json:"on_behalf_of,omitempty"`
	Note           *string         `json:"note,omitempty"`
	Reversed       bool            `json:"reversed"`
	ReversedTrxID  *uuid.UUID      `json:"reversed_trx_id,omitempty"`
	UserID         uuid.UUID       `json:"user_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsReversal reports whether this record was created as a compensating
// transaction for another one.
func (t *Transaction) IsReversal() bool {
	return !t.Reversed && t.ReversedTrxID != nil
}

// CanReverse reports whether this transaction may still be reversed.
// A reversed transaction cannot be reversed again, and a reversal record
// already carries its single ReversedTrxID reference.
func (t *Transaction) CanReverse() bool {
	return !t.Reversed && t.ReversedTrxID == nil
}

// CounterpartyName returns the name the open-items ledger reconciles
// against: the on-behalf-of partner when a send names one, otherwise the
// direct receiver; for a receive, the sender. Empty when the transaction
// carries no usable name.
func (t *Transaction) CounterpartyName() string {
	switch t.TrxType {
	case TrxTypeSend:
		if t.OnBehalfOf != nil && *t.OnBehalfOf != "" {
			return *t.OnBehalfOf
		}
		return t.Receiver
	case TrxTypeReceive:
		return t.Sender
	}
	return ""
}
