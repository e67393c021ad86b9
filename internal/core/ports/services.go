package ports

import (
	"context"

	"pocket-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the transaction coordinator: it validates intents,
// runs the reconciliation engine and applies every mutation of one
// request atomically.
type LedgerService interface {
	CreateTransaction(ctx context.Context, intent CreateTransactionInput) (*domain.Transaction, error)
	ReverseTransaction(ctx context.Context, trxID, userID uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetLedger(ctx context.Context, userID uuid.UUID) (*LedgerSnapshot, error)
	GetBalances(ctx context.Context, userID uuid.UUID) (*BalanceSnapshot, error)
}

// CreateTransactionInput holds one validated transaction intent.
type CreateTransactionInput struct {
	UserID      uuid.UUID
	TrxType     domain.TrxType
	Sender      string // counterparty name on receive; ignored on send
	Receiver    string // counterparty name on send; ignored on receive
	Amount      decimal.Decimal
	Rate        decimal.Decimal
	Quantity    decimal.Decimal
	FromAccount string
	OnBehalfOf  *string
	Note        *string
}

// LedgerSnapshot is the current open-items view for one user.
type LedgerSnapshot struct {
	Debtors   []domain.LedgerEntry
	Creditors []domain.LedgerEntry
}

// BalanceSnapshot is the current balance-holder view for one user.
type BalanceSnapshot struct {
	Accounts []domain.Account
	Partners []domain.Partner
}

// DirectoryService manages the user/account/partner directories the
// coordinator checks preconditions against.
type DirectoryService interface {
	CreateUser(ctx context.Context, name string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, name string) error

	CreatePartner(ctx context.Context, input CreatePartnerInput) (*domain.Partner, error)
	ListPartners(ctx context.Context, userID uuid.UUID) ([]domain.Partner, error)
	DeletePartner(ctx context.Context, userID uuid.UUID, name string) error
}

// CreateAccountInput holds input for opening a funding account.
type CreateAccountInput struct {
	UserID   uuid.UUID
	Name     string
	Balance  decimal.Decimal
	Quantity decimal.Decimal
}

// CreatePartnerInput holds input for registering a partner.
type CreatePartnerInput struct {
	UserID uuid.UUID
	Name   string
	Phone  *string
}
