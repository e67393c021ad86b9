package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTrxType_Valid(t *testing.T) {
	tests := []struct {
		name string
		typ  TrxType
		want bool
	}{
		{"send", TrxTypeSend, true},
		{"receive", TrxTypeReceive, true},
		{"empty", TrxType(""), false},
		{"unknown", TrxType("transfer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Valid())
		})
	}
}

func TestTrxType_Inverse(t *testing.T) {
	assert.Equal(t, TrxTypeReceive, TrxTypeSend.Inverse())
	assert.Equal(t, TrxTypeSend, TrxTypeReceive.Inverse())
}

func TestEntrySide_Opposite(t *testing.T) {
	assert.Equal(t, SideCreditor, SideDebtor.Opposite())
	assert.Equal(t, SideDebtor, SideCreditor.Opposite())
}

func TestLedgerEntry_IsZero(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		quantity string
		want     bool
	}{
		{"both zero", "0", "0", true},
		{"amount left", "0.01", "0", false},
		{"quantity left", "0", "3", false},
		{"both nonzero", "10", "5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &LedgerEntry{
				Amount:   decimal.RequireFromString(tt.amount),
				Quantity: decimal.RequireFromString(tt.quantity),
			}
			assert.Equal(t, tt.want, e.IsZero())
		})
	}
}

func TestTransaction_CanReverse(t *testing.T) {
	other := uuid.New()
	tests := []struct {
		name string
		trx  Transaction
		want bool
	}{
		{"fresh", Transaction{}, true},
		{"already reversed", Transaction{Reversed: true, ReversedTrxID: &other}, false},
		{"is a reversal", Transaction{ReversedTrxID: &other}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trx.CanReverse())
		})
	}
}

func TestTransaction_IsReversal(t *testing.T) {
	other := uuid.New()
	assert.False(t, (&Transaction{}).IsReversal())
	assert.True(t, (&Transaction{ReversedTrxID: &other}).IsReversal())
	// A reversed original references its reversal but is not one itself.
	assert.False(t, (&Transaction{Reversed: true, ReversedTrxID: &other}).IsReversal())
}

func TestTransaction_CounterpartyName(t *testing.T) {
	tests := []struct {
		name string
		trx  Transaction
		want string
	}{
		{"send direct", Transaction{TrxType: TrxTypeSend, Sender: "Me", Receiver: "Bob"}, "Bob"},
		{"send on behalf", Transaction{TrxType: TrxTypeSend, Receiver: "Bob", OnBehalfOf: strPtr("PartnerCo")}, "PartnerCo"},
		{"send empty on behalf", Transaction{TrxType: TrxTypeSend, Receiver: "Bob", OnBehalfOf: strPtr("")}, "Bob"},
		{"receive", Transaction{TrxType: TrxTypeReceive, Sender: "Carol", Receiver: "Me"}, "Carol"},
		{"unknown type", Transaction{TrxType: TrxType("x"), Sender: "a", Receiver: "b"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trx.CounterpartyName())
		})
	}
}
