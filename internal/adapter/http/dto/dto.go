package dto

import "github.com/shopspring/decimal"

// CreateUserRequest is the request body for registering a ledger owner.
type CreateUserRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UserResponse is the response body for a ledger owner.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CreateAccountRequest is the request body for opening a funding account.
// Balance and Quantity default to zero when omitted.
type CreateAccountRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=100"`
	Balance  decimal.Decimal `json:"balance"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AccountResponse is the response body for a funding account.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// CreatePartnerRequest is the request body for registering a partner.
// Partners always open with zero balances.
type CreatePartnerRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Phone *string `json:"phone,omitempty" binding:"omitempty,max=30"`
}

// PartnerResponse is the response body for a partner intermediary.
type PartnerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     *string         `json:"phone,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// CreateTransactionRequest is the request body for recording an economic
// event. Amount, rate and quantity arrive as decimal strings; their
// positivity is enforced by the coordinator, not the binding layer.
type CreateTransactionRequest struct {
	TrxType     string          `json:"trx_type" binding:"required,oneof=send receive"`
	Sender      string          `json:"sender" binding:"omitempty,max=100"`
	Receiver    string          `json:"receiver" binding:"omitempty,max=100"`
	Amount      decimal.Decimal `json:"amount"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    decimal.Decimal `json:"quantity"`
	FromAccount string          `json:"from_account" binding:"required,min=1,max=100"`
	OnBehalfOf  *string         `json:"on_behalf_of,omitempty" binding:"omitempty,max=100"`
	Note        *string         `json:"note,omitempty" binding:"omitempty,max=500"`
}

// TransactionResponse is the response body for one log record.
type TransactionResponse struct {
	ID             string          `json:"id"`
	SequenceNumber int64           `json:"sequence_number"`
	TrxType        string          `json:"trx_type"`
	Sender         string          `json:"sender"`
	Receiver       string          `json:"receiver"`
	Amount         decimal.Decimal `json:"amount"`
	Rate           decimal.Decimal `json:"rate"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromAccount    string          `json:"from_account"`
	OnBehalfOf     *string         `json:"on_behalf_of,omitempty"`
	Note           *string         `json:"note,omitempty"`
	Reversed       bool            `json:"reversed"`
	ReversedTrxID  *string         `json:"reversed_trx_id,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

// TransactionListResponse wraps the paginated transaction log.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// LedgerEntryResponse is one open item in the debtor/creditor view.
type LedgerEntryResponse struct {
	Side         string          `json:"side"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitRate     decimal.Decimal `json:"unit_rate"`
	OriginTrxID  string          `json:"origin_trx_id"`
	UpdatedAt    string          `json:"updated_at"`
}

// LedgerResponse is the open-items snapshot, split by side.
type LedgerResponse struct {
	Debtors   []LedgerEntryResponse `json:"debtors"`
	Creditors []LedgerEntryResponse `json:"creditors"`
}

// BalancesResponse is the balance-holder snapshot.
type BalancesResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Partners []PartnerResponse `json:"partners"`
}
