package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, sequence_number, trx_type, sender, receiver, amount, rate, quantity,
		from_account, on_behalf_of, note, reversed, reversed_trx_id, user_id, created_at`

// Create appends a transaction to the log within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, sequence_number, trx_type, sender, receiver, amount, rate, quantity,
		from_account, on_behalf_of, note, reversed, reversed_trx_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.SequenceNumber, t.TrxType, t.Sender, t.Receiver,
		t.Amount, t.Rate, t.Quantity, t.FromAccount, t.OnBehalfOf,
		t.Note, t.Reversed, t.ReversedTrxID, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// NextSequenceNumber returns the next per-user sequence number. It must
// run inside the serialized per-user transaction so the sequence stays
// gapless and strictly increasing.
func (r *TransactionRepo) NextSequenceNumber(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM transactions WHERE user_id = $1`

	var next int64
	if err := tx.QueryRow(ctx, query, userID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence number: %w", err)
	}
	return next, nil
}

// MarkReversed flags the original transaction and links its compensating
// record. Fails when the original is missing or already reversed.
func (r *TransactionRepo) MarkReversed(ctx context.Context, tx pgx.Tx, id, reversalID uuid.UUID) error {
	query := `UPDATE transactions SET reversed = TRUE, reversed_trx_id = $1
		WHERE id = $2 AND reversed = FALSE`

	tag, err := tx.Exec(ctx, query, reversalID, id)
	if err != nil {
		return fmt.Errorf("mark transaction reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found or already reversed: %s", id)
	}
	return nil
}

// List fetches transactions with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("trx_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+transactionColumns+` FROM transactions %s
		ORDER BY sequence_number DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.SequenceNumber, &t.TrxType, &t.Sender, &t.Receiver,
			&t.Amount, &t.Rate, &t.Quantity, &t.FromAccount, &t.OnBehalfOf,
			&t.Note, &t.Reversed, &t.ReversedTrxID, &t.UserID, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// CountActiveByAccount counts non-reversed transactions drawing on an account.
func (r *TransactionRepo) CountActiveByAccount(ctx context.Context, userID uuid.UUID, accountName string) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND from_account = $2 AND reversed = FALSE`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, accountName).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions by account: %w", err)
	}
	return count, nil
}

// CountActiveByPartner counts non-reversed transactions routed through a
// partner, matching either the on-behalf-of field or the sender name.
func (r *TransactionRepo) CountActiveByPartner(ctx context.Context, userID uuid.UUID, partnerName string) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND reversed = FALSE AND (on_behalf_of = $2 OR (trx_type = 'receive' AND sender = $2))`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID, partnerName).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions by partner: %w", err)
	}
	return count, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.SequenceNumber, &t.TrxType, &t.Sender, &t.Receiver,
		&t.Amount, &t.Rate, &t.Quantity, &t.FromAccount, &t.OnBehalfOf,
		&t.Note, &t.Reversed, &t.ReversedTrxID, &t.UserID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
