package ports

import (
	"context"

	"pocket-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for ledger owners.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
}

// AccountRepository defines persistence operations for funding accounts.
// Methods accepting pgx.Tx run inside the per-request transaction and take
// row locks so the read-modify-write of a balance is serialized.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Account, error)
	GetByNameForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, name string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, quantity decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	Delete(ctx context.Context, userID uuid.UUID, name string) error
}

// PartnerRepository defines persistence operations for partner
// intermediaries. Same locking contract as AccountRepository.
type PartnerRepository interface {
	Create(ctx context.Context, partner *domain.Partner) error
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Partner, error)
	GetByNameForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, name string) (*domain.Partner, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, quantity decimal.Decimal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Partner, error)
	Delete(ctx context.Context, userID uuid.UUID, name string) error
}

// LedgerRepository defines persistence operations for open-items entries.
// At most one row exists per (user, side, counterparty); Upsert keeps that
// invariant structurally.
type LedgerRepository interface {
	// GetPairForUpdate locks and returns the debtor and creditor entries
	// for one counterparty. Either result may be nil.
	GetPairForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, counterparty string) (debtor, creditor *domain.LedgerEntry, err error)
	Upsert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	Delete(ctx context.Context, tx pgx.Tx, userID uuid.UUID, side domain.EntrySide, counterparty string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error)
}

// TransactionRepository defines persistence operations for the
// append-mostly transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, trx *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// NextSequenceNumber returns the next gapless per-user sequence
	// number. Must run inside the serialized per-user transaction.
	NextSequenceNumber(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error)
	// MarkReversed flags the original transaction and records the id of
	// its compensating record. Fails if the original was already flagged.
	MarkReversed(ctx context.Context, tx pgx.Tx, id, reversalID uuid.UUID) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	// CountActiveByAccount counts non-reversed transactions drawing on an
	// account; used to refuse deleting a referenced balance holder.
	CountActiveByAccount(ctx context.Context, userID uuid.UUID, accountName string) (int64, error)
	CountActiveByPartner(ctx context.Context, userID uuid.UUID, partnerName string) (int64, error)
}

// TransactionListParams holds filter + pagination for listing the log.
// Results are ordered by sequence number descending.
type TransactionListParams struct {
	UserID   uuid.UUID
	Type     *domain.TrxType
	Page     int
	PageSize int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserLocker serializes ledger mutations per user. Acquire blocks until
// the user's exclusive lock is held or the configured timeout elapses;
// the returned release function must be called exactly once.
type UserLocker interface {
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}
