package postgres

import (
	"context"
	"errors"
	"fmt"

	"pocket-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PartnerRepo implements ports.PartnerRepository.
type PartnerRepo struct {
	pool Pool
}

// NewPartnerRepo creates a new PartnerRepo.
func NewPartnerRepo(pool Pool) *PartnerRepo {
	return &PartnerRepo{pool: pool}
}

const partnerColumns = `id, user_id, name, phone, balance, quantity, created_at, updated_at`

// Create inserts a new partner.
func (r *PartnerRepo) Create(ctx context.Context, p *domain.Partner) error {
	query := `INSERT INTO partners (id, user_id, name, phone, balance, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Phone, p.Balance, p.Quantity, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetByName fetches a partner by owner and name (non-locking read).
func (r *PartnerRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE user_id = $1 AND name = $2`

	return scanPartner(r.pool.QueryRow(ctx, query, userID, name), "get partner by name")
}

// GetByNameForUpdate fetches a partner with pessimistic locking.
// This MUST be called within a transaction.
func (r *PartnerRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, name string) (*domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE user_id = $1 AND name = $2 FOR UPDATE`

	return scanPartner(tx.QueryRow(ctx, query, userID, name), "get partner for update")
}

// UpdateBalance writes a partner's new balance and quantity within a transaction.
func (r *PartnerRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, quantity decimal.Decimal) error {
	query := `UPDATE partners SET balance = $1, quantity = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, quantity, id)
	if err != nil {
		return fmt.Errorf("update partner balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partner not found: %s", id)
	}
	return nil
}

// ListByUser fetches all partners for one user ordered by name.
func (r *PartnerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE user_id = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var partners []domain.Partner
	for rows.Next() {
		p := domain.Partner{}
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Phone, &p.Balance, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan partner row: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partner rows: %w", err)
	}
	return partners, nil
}

// Delete removes a partner by owner and name.
func (r *PartnerRepo) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	query := `DELETE FROM partners WHERE user_id = $1 AND name = $2`

	tag, err := r.pool.Exec(ctx, query, userID, name)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partner not found: %s", name)
	}
	return nil
}

func scanPartner(row pgx.Row, op string) (*domain.Partner, error) {
	p := &domain.Partner{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Phone, &p.Balance, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
