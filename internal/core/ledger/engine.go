// Package ledger implements the reconciliation engine for the open-items
// ledger. Given one economic event and the current debtor/creditor entries
// for a counterparty, it computes the entry mutations the stores must
// apply. The engine is pure: it never touches storage and never fails
// because of ledger state — every state has a defined transition.
package ledger

import (
	"errors"
	"time"

	"pocket-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for a negative amount or quantity.
	ErrInvalidAmount = errors.New("amount and quantity must be non-negative")
	// ErrMissingName is returned when no counterparty name could be
	// derived from the transaction. This is a caller bug, not a ledger
	// state.
	ErrMissingName = errors.New("counterparty name is required")
)

// Direction tells which way value flowed relative to the user.
type Direction int

const (
	// CreditDirection is a send: value advanced by the user. It grows the
	// creditor entry and burns down any open debtor entry first.
	CreditDirection Direction = iota
	// DebitDirection is a receive: value taken in by the user. It grows
	// the debtor entry and burns down any open creditor entry first.
	DebitDirection
)

// DirectionFor maps a transaction type to its ledger direction. A
// reversal runs the inverse transition so that forward-then-reverse
// returns the ledger to its prior state.
func DirectionFor(t domain.TrxType, reversal bool) Direction {
	send := t == domain.TrxTypeSend
	if reversal {
		send = !send
	}
	if send {
		return CreditDirection
	}
	return DebitDirection
}

// Delta is the magnitude one transaction applies against a counterparty.
type Delta struct {
	Amount   decimal.Decimal
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	TrxID    uuid.UUID
	Now      time.Time
}

// State holds the current open entries for one (user, counterparty) pair.
// Either pointer may be nil when no entry exists on that side.
type State struct {
	Debtor   *domain.LedgerEntry
	Creditor *domain.LedgerEntry
}

// Mutations describes the store writes one transition requires. All
// upserts and removals belong to the same atomic commit.
type Mutations struct {
	Upserts  []domain.LedgerEntry
	Removals []domain.EntrySide
}

// Reconcile computes the entry transitions for one transaction applied
// against counterparty name. userID scopes the entries it may create.
//
// Credit direction with delta (a, q): if no debtor entry is open the
// creditor entry accumulates (a, q), created on first contact — a fresh
// send records the advanced value as owed, which is the system's
// deliberate convention. If a debtor entry is open, it keeps the
// componentwise positive remainder of (da-a, dq-q); any componentwise
// overshoot spills into the creditor entry. Entries whose amount and
// quantity both reach exactly zero are removed. Amount and quantity are
// independent measures, so one may stay on the debtor side while the
// other flips — both legs are then written together. The debit direction
// mirrors this with the sides swapped.
func Reconcile(dir Direction, userID uuid.UUID, name string, d Delta, st State) (Mutations, error) {
	if name == "" {
		return Mutations{}, ErrMissingName
	}
	if d.Amount.IsNegative() || d.Quantity.IsNegative() {
		return Mutations{}, ErrInvalidAmount
	}

	switch dir {
	case CreditDirection:
		return transition(userID, name, d, st.Debtor, st.Creditor, domain.SideDebtor), nil
	default:
		return transition(userID, name, d, st.Creditor, st.Debtor, domain.SideCreditor), nil
	}
}

// transition burns the delta into the entry on burnSide and accumulates
// any remainder on the opposite side.
func transition(userID uuid.UUID, name string, d Delta, burn, grow *domain.LedgerEntry, burnSide domain.EntrySide) Mutations {
	var m Mutations

	if burn == nil {
		m.Upserts = append(m.Upserts, accumulate(grow, burnSide.Opposite(), userID, name, d, d.Amount, d.Quantity))
		return m
	}

	newA := burn.Amount.Sub(d.Amount)
	newQ := burn.Quantity.Sub(d.Quantity)

	keep := *burn
	keep.Amount = maxZero(newA)
	keep.Quantity = maxZero(newQ)
	keep.UnitRate = d.Rate
	keep.UpdatedAt = d.Now

	if keep.IsZero() {
		m.Removals = append(m.Removals, burnSide)
	} else {
		m.Upserts = append(m.Upserts, keep)
	}

	spillA := maxZero(newA.Neg())
	spillQ := maxZero(newQ.Neg())
	if !spillA.IsZero() || !spillQ.IsZero() {
		m.Upserts = append(m.Upserts, accumulate(grow, burnSide.Opposite(), userID, name, d, spillA, spillQ))
	}
	return m
}

// accumulate adds (a, q) onto an existing entry or starts a new one. An
// existing entry keeps its origin transaction and creation time; the rate
// is refreshed to the applied transaction's rate either way.
func accumulate(existing *domain.LedgerEntry, side domain.EntrySide, userID uuid.UUID, name string, d Delta, a, q decimal.Decimal) domain.LedgerEntry {
	if existing == nil {
		return domain.LedgerEntry{
			UserID:       userID,
			Side:         side,
			Counterparty: name,
			Amount:       a,
			Quantity:     q,
			UnitRate:     d.Rate,
			OriginTrxID:  d.TrxID,
			CreatedAt:    d.Now,
			UpdatedAt:    d.Now,
		}
	}
	e := *existing
	e.Amount = e.Amount.Add(a)
	e.Quantity = e.Quantity.Add(q)
	e.UnitRate = d.Rate
	e.UpdatedAt = d.Now
	return e
}

func maxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
