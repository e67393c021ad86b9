package service

import (
	"context"
	"fmt"
	"time"

	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ledger"
	"pocket-ledger/internal/core/ports"
	"pocket-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LedgerServiceImpl implements ports.LedgerService. It is the
// coordinator: every transaction runs under the user's exclusive lock
// and inside one database transaction, so the log, the open-items
// entries and the balances always move together.
type LedgerServiceImpl struct {
	userRepo    ports.UserRepository
	accountRepo ports.AccountRepository
	partnerRepo ports.PartnerRepository
	ledgerRepo  ports.LedgerRepository
	trxRepo     ports.TransactionRepository
	transactor  ports.DBTransactor
	locker      ports.UserLocker
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	userRepo ports.UserRepository,
	accountRepo ports.AccountRepository,
	partnerRepo ports.PartnerRepository,
	ledgerRepo ports.LedgerRepository,
	trxRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	locker ports.UserLocker,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		partnerRepo: partnerRepo,
		ledgerRepo:  ledgerRepo,
		trxRepo:     trxRepo,
		transactor:  transactor,
		locker:      locker,
		log:         log,
	}
}

// CreateTransaction records one send or receive: it appends to the log,
// reconciles the counterparty's open-items entries and moves the account
// and partner balances, all atomically.
func (s *LedgerServiceImpl) CreateTransaction(ctx context.Context, in ports.CreateTransactionInput) (*domain.Transaction, error) {
	if !in.TrxType.Valid() {
		return nil, apperror.ErrInvalidTrxType()
	}
	if !in.Amount.IsPositive() || in.Quantity.IsNegative() || in.Rate.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}
	if in.FromAccount == "" {
		return nil, apperror.Validation("from_account is required")
	}

	now := time.Now().UTC()
	trx := &domain.Transaction{
		ID:          uuid.New(),
		TrxType:     in.TrxType,
		Sender:      in.Sender,
		Receiver:    in.Receiver,
		Amount:      in.Amount,
		Rate:        in.Rate,
		Quantity:    in.Quantity,
		FromAccount: in.FromAccount,
		OnBehalfOf:  in.OnBehalfOf,
		Note:        in.Note,
		UserID:      in.UserID,
		CreatedAt:   now,
	}
	counterparty := trx.CounterpartyName()
	if counterparty == "" {
		return nil, apperror.ErrMissingCounterparty()
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}

	release, err := s.locker.Acquire(ctx, in.UserID)
	if err != nil {
		return nil, apperror.ErrLockTimeout(err)
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	seq, err := s.trxRepo.NextSequenceNumber(ctx, dbTx, in.UserID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("next sequence: %w", err))
	}
	trx.SequenceNumber = seq

	if err := s.trxRepo.Create(ctx, dbTx, trx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}

	dir := ledger.DirectionFor(in.TrxType, false)
	if err := s.reconcileLedger(ctx, dbTx, trx, counterparty, dir, now); err != nil {
		return nil, err
	}

	if err := s.applyBalances(ctx, dbTx, trx, counterparty, false); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("trx_id", trx.ID.String()).
		Int64("sequence", trx.SequenceNumber).
		Str("type", string(trx.TrxType)).
		Str("counterparty", counterparty).
		Str("amount", trx.Amount.String()).
		Msg("transaction recorded")

	return trx, nil
}

// ReverseTransaction undoes one transaction by appending a compensating
// record: the inverse transition is applied to the ledger and the balance
// moves are negated. The original stays in the log, flagged and linked to
// its reversal.
func (s *LedgerServiceImpl) ReverseTransaction(ctx context.Context, trxID, userID uuid.UUID) (*domain.Transaction, error) {
	orig, err := s.trxRepo.GetByID(ctx, trxID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load transaction: %w", err))
	}
	if orig == nil || orig.UserID != userID {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if orig.Reversed {
		return nil, apperror.ErrAlreadyReversed()
	}
	if orig.IsReversal() {
		return nil, apperror.ErrReversalNotReversible()
	}

	counterparty := orig.CounterpartyName()
	if counterparty == "" {
		return nil, apperror.ErrMissingCounterparty()
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, apperror.ErrLockTimeout(err)
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	seq, err := s.trxRepo.NextSequenceNumber(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("next sequence: %w", err))
	}

	reversal := &domain.Transaction{
		ID:             uuid.New(),
		SequenceNumber: seq,
		TrxType:        orig.TrxType.Inverse(),
		Sender:         orig.Receiver,
		Receiver:       orig.Sender,
		Amount:         orig.Amount,
		Rate:           orig.Rate,
		Quantity:       orig.Quantity,
		FromAccount:    orig.FromAccount,
		OnBehalfOf:     orig.OnBehalfOf,
		ReversedTrxID:  &orig.ID,
		UserID:         userID,
		CreatedAt:      now,
	}

	if err := s.trxRepo.Create(ctx, dbTx, reversal); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create reversal: %w", err))
	}

	// MarkReversed guards against a concurrent reversal that committed
	// after the precondition check above.
	if err := s.trxRepo.MarkReversed(ctx, dbTx, orig.ID, reversal.ID); err != nil {
		return nil, apperror.ErrAlreadyReversed()
	}

	// The ledger transition runs on the original's magnitudes, inverted.
	dir := ledger.DirectionFor(orig.TrxType, true)
	probe := &domain.Transaction{
		ID:       reversal.ID,
		Amount:   orig.Amount,
		Rate:     orig.Rate,
		Quantity: orig.Quantity,
		UserID:   userID,
	}
	if err := s.reconcileLedger(ctx, dbTx, probe, counterparty, dir, now); err != nil {
		return nil, err
	}

	if err := s.applyBalances(ctx, dbTx, orig, counterparty, true); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("trx_id", reversal.ID.String()).
		Str("original_trx_id", orig.ID.String()).
		Str("counterparty", counterparty).
		Msg("transaction reversed")

	return reversal, nil
}

// ListTransactions returns a page of the user's log, newest first.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Type != nil && !params.Type.Valid() {
		return nil, 0, apperror.ErrInvalidTrxType()
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	txns, total, err := s.trxRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetLedger returns the user's open debtor and creditor entries.
func (s *LedgerServiceImpl) GetLedger(ctx context.Context, userID uuid.UUID) (*ports.LedgerSnapshot, error) {
	entries, err := s.ledgerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list ledger entries: %w", err))
	}

	snap := &ports.LedgerSnapshot{}
	for _, e := range entries {
		switch e.Side {
		case domain.SideDebtor:
			snap.Debtors = append(snap.Debtors, e)
		case domain.SideCreditor:
			snap.Creditors = append(snap.Creditors, e)
		}
	}
	return snap, nil
}

// GetBalances returns the user's account and partner balances.
func (s *LedgerServiceImpl) GetBalances(ctx context.Context, userID uuid.UUID) (*ports.BalanceSnapshot, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list accounts: %w", err))
	}
	partners, err := s.partnerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list partners: %w", err))
	}
	return &ports.BalanceSnapshot{Accounts: accounts, Partners: partners}, nil
}

// reconcileLedger locks the counterparty's entry pair, runs the engine
// and writes the resulting upserts and removals.
func (s *LedgerServiceImpl) reconcileLedger(ctx context.Context, dbTx pgx.Tx, trx *domain.Transaction, counterparty string, dir ledger.Direction, now time.Time) error {
	debtor, creditor, err := s.ledgerRepo.GetPairForUpdate(ctx, dbTx, trx.UserID, counterparty)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("lock ledger pair: %w", err))
	}

	muts, err := ledger.Reconcile(dir, trx.UserID, counterparty, ledger.Delta{
		Amount:   trx.Amount,
		Quantity: trx.Quantity,
		Rate:     trx.Rate,
		TrxID:    trx.ID,
		Now:      now,
	}, ledger.State{Debtor: debtor, Creditor: creditor})
	if err != nil {
		return apperror.Validation(err.Error())
	}

	for i := range muts.Upserts {
		if err := s.ledgerRepo.Upsert(ctx, dbTx, &muts.Upserts[i]); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("upsert ledger entry: %w", err))
		}
	}
	for _, side := range muts.Removals {
		if err := s.ledgerRepo.Delete(ctx, dbTx, trx.UserID, side, counterparty); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("remove ledger entry: %w", err))
		}
	}
	return nil
}

// applyBalances moves the account and partner balances for one
// transaction. A send drains the account and funds the partner; a
// receive does the opposite. negate flips both moves for reversals.
func (s *LedgerServiceImpl) applyBalances(ctx context.Context, dbTx pgx.Tx, trx *domain.Transaction, counterparty string, negate bool) error {
	amount, quantity := trx.Amount, trx.Quantity
	if (trx.TrxType == domain.TrxTypeSend) != negate {
		amount, quantity = amount.Neg(), quantity.Neg()
	}

	account, err := s.accountRepo.GetByNameForUpdate(ctx, dbTx, trx.UserID, trx.FromAccount)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return apperror.ErrNotFound("Account")
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, account.ID,
		account.Balance.Add(amount), account.Quantity.Add(quantity)); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update account balance: %w", err))
	}

	partner, required, err := s.resolvePartner(ctx, dbTx, trx, counterparty)
	if err != nil {
		return err
	}
	if partner == nil {
		if required {
			return apperror.ErrNotFound("Partner")
		}
		return nil
	}
	// The partner mirrors the account: what leaves the account arrives at
	// the partner and vice versa.
	if err := s.partnerRepo.UpdateBalance(ctx, dbTx, partner.ID,
		partner.Balance.Sub(amount), partner.Quantity.Sub(quantity)); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update partner balance: %w", err))
	}
	return nil
}

// resolvePartner finds the partner a transaction routes through. On a
// send the on-behalf-of intermediary is mandatory when named; on a
// receive a partner matching the sender's name participates when one is
// registered.
func (s *LedgerServiceImpl) resolvePartner(ctx context.Context, dbTx pgx.Tx, trx *domain.Transaction, counterparty string) (*domain.Partner, bool, error) {
	var name string
	var required bool
	switch trx.TrxType {
	case domain.TrxTypeSend:
		if trx.OnBehalfOf == nil || *trx.OnBehalfOf == "" {
			return nil, false, nil
		}
		name = *trx.OnBehalfOf
		required = true
	case domain.TrxTypeReceive:
		name = trx.Sender
	}
	if name == "" {
		return nil, false, nil
	}

	partner, err := s.partnerRepo.GetByNameForUpdate(ctx, dbTx, trx.UserID, name)
	if err != nil {
		return nil, required, apperror.ErrDatabaseError(fmt.Errorf("lock partner: %w", err))
	}
	return partner, required, nil
}

var _ ports.LedgerService = (*LedgerServiceImpl)(nil)
