package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Name == u.Name {
			return fmt.Errorf("user name already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, name string) (*domain.Account, error) {
	return r.GetByName(ctx, userID, name)
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, quantity decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.Balance = balance
	a.Quantity = quantity
	return nil
}

func (r *inMemoryAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *inMemoryAccountRepo) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.UserID == userID && a.Name == name {
			delete(r.accounts, id)
			return nil
		}
	}
	return fmt.Errorf("account not found")
}

// --- In-Memory Partner Repo ---

type inMemoryPartnerRepo struct {
	mu       sync.RWMutex
	partners map[uuid.UUID]*domain.Partner
}

func newInMemoryPartnerRepo() *inMemoryPartnerRepo {
	return &inMemoryPartnerRepo{partners: make(map[uuid.UUID]*domain.Partner)}
}

func (r *inMemoryPartnerRepo) Create(ctx context.Context, p *domain.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.partners[p.ID] = &cp
	return nil
}

func (r *inMemoryPartnerRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.partners {
		if p.UserID == userID && p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPartnerRepo) GetByNameForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, name string) (*domain.Partner, error) {
	return r.GetByName(ctx, userID, name)
}

func (r *inMemoryPartnerRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance, quantity decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return fmt.Errorf("partner not found")
	}
	p.Balance = balance
	p.Quantity = quantity
	return nil
}

func (r *inMemoryPartnerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Partner
	for _, p := range r.partners {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *inMemoryPartnerRepo) Delete(ctx context.Context, userID uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.partners {
		if p.UserID == userID && p.Name == name {
			delete(r.partners, id)
			return nil
		}
	}
	return fmt.Errorf("partner not found")
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries map[string]*domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{entries: make(map[string]*domain.LedgerEntry)}
}

func entryKey(userID uuid.UUID, side domain.EntrySide, counterparty string) string {
	return fmt.Sprintf("%s|%s|%s", userID, side, counterparty)
}

func (r *inMemoryLedgerRepo) GetPairForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, counterparty string) (*domain.LedgerEntry, *domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var debtor, creditor *domain.LedgerEntry
	if e, ok := r.entries[entryKey(userID, domain.SideDebtor, counterparty)]; ok {
		cp := *e
		debtor = &cp
	}
	if e, ok := r.entries[entryKey(userID, domain.SideCreditor, counterparty)]; ok {
		cp := *e
		creditor = &cp
	}
	return debtor, creditor, nil
}

func (r *inMemoryLedgerRepo) Upsert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entryKey(entry.UserID, entry.Side, entry.Counterparty)] = &cp
	return nil
}

func (r *inMemoryLedgerRepo) Delete(ctx context.Context, tx pgx.Tx, userID uuid.UUID, side domain.EntrySide, counterparty string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entryKey(userID, side, counterparty)
	if _, ok := r.entries[key]; !ok {
		return fmt.Errorf("ledger entry not found: %s/%s", side, counterparty)
	}
	delete(r.entries, key)
	return nil
}

func (r *inMemoryLedgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Side != result[j].Side {
			return result[i].Side < result[j].Side
		}
		return result[i].Counterparty < result[j].Counterparty
	})
	return result, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) NextSequenceNumber(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var max int64
	for _, t := range r.transactions {
		if t.UserID == userID && t.SequenceNumber > max {
			max = t.SequenceNumber
		}
	}
	return max + 1, nil
}

func (r *inMemoryTransactionRepo) MarkReversed(ctx context.Context, tx pgx.Tx, id, reversalID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Reversed {
		return fmt.Errorf("transaction not found or already reversed")
	}
	t.Reversed = true
	rid := reversalID
	t.ReversedTrxID = &rid
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.Type != nil && t.TrxType != *params.Type {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SequenceNumber > result[j].SequenceNumber })
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) CountActiveByAccount(ctx context.Context, userID uuid.UUID, accountName string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, t := range r.transactions {
		if t.UserID == userID && !t.Reversed && t.FromAccount == accountName {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryTransactionRepo) CountActiveByPartner(ctx context.Context, userID uuid.UUID, partnerName string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, t := range r.transactions {
		if t.UserID != userID || t.Reversed {
			continue
		}
		if (t.OnBehalfOf != nil && *t.OnBehalfOf == partnerName) ||
			(t.TrxType == domain.TrxTypeReceive && t.Sender == partnerName) {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
