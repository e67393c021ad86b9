package postgres

import (
	"context"
	"fmt"

	"pocket-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. One row per
// (user_id, side, counterparty); the primary key enforces that.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

const ledgerColumns = `user_id, side, counterparty, amount, quantity, unit_rate, origin_trx_id, created_at, updated_at`

// GetPairForUpdate locks and returns the debtor and creditor entries for
// one counterparty. Either result is nil when that side has no open entry.
// This MUST be called within a transaction.
func (r *LedgerRepo) GetPairForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, counterparty string) (*domain.LedgerEntry, *domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE user_id = $1 AND counterparty = $2 FOR UPDATE`

	rows, err := tx.Query(ctx, query, userID, counterparty)
	if err != nil {
		return nil, nil, fmt.Errorf("get ledger pair for update: %w", err)
	}
	defer rows.Close()

	var debtor, creditor *domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.UserID, &e.Side, &e.Counterparty, &e.Amount, &e.Quantity,
			&e.UnitRate, &e.OriginTrxID, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entry := e
		switch e.Side {
		case domain.SideDebtor:
			debtor = &entry
		case domain.SideCreditor:
			creditor = &entry
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return debtor, creditor, nil
}

// Upsert inserts or overwrites the entry for its (user, side, counterparty)
// slot within a transaction.
func (r *LedgerRepo) Upsert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (user_id, side, counterparty, amount, quantity, unit_rate, origin_trx_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, side, counterparty) DO UPDATE SET
			amount = EXCLUDED.amount,
			quantity = EXCLUDED.quantity,
			unit_rate = EXCLUDED.unit_rate,
			updated_at = EXCLUDED.updated_at`

	_, err := tx.Exec(ctx, query,
		e.UserID, e.Side, e.Counterparty, e.Amount, e.Quantity,
		e.UnitRate, e.OriginTrxID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert ledger entry: %w", err)
	}
	return nil
}

// Delete removes the settled entry for one slot within a transaction.
func (r *LedgerRepo) Delete(ctx context.Context, tx pgx.Tx, userID uuid.UUID, side domain.EntrySide, counterparty string) error {
	query := `DELETE FROM ledger_entries WHERE user_id = $1 AND side = $2 AND counterparty = $3`

	tag, err := tx.Exec(ctx, query, userID, side, counterparty)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found: %s/%s", side, counterparty)
	}
	return nil
}

// ListByUser fetches all open entries for one user, debtors before
// creditors, each side ordered by counterparty.
func (r *LedgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE user_id = $1 ORDER BY side, counterparty`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.UserID, &e.Side, &e.Counterparty, &e.Amount, &e.Quantity,
			&e.UnitRate, &e.OriginTrxID, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return entries, nil
}
