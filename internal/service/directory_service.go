package service

import (
	"context"
	"fmt"
	"time"

	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"
	"pocket-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DirectoryServiceImpl implements ports.DirectoryService: the user,
// account and partner registries the coordinator resolves names against.
type DirectoryServiceImpl struct {
	userRepo    ports.UserRepository
	accountRepo ports.AccountRepository
	partnerRepo ports.PartnerRepository
	trxRepo     ports.TransactionRepository
	log         zerolog.Logger
}

// NewDirectoryService creates a new DirectoryServiceImpl.
func NewDirectoryService(
	userRepo ports.UserRepository,
	accountRepo ports.AccountRepository,
	partnerRepo ports.PartnerRepository,
	trxRepo ports.TransactionRepository,
	log zerolog.Logger,
) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		partnerRepo: partnerRepo,
		trxRepo:     trxRepo,
		log:         log,
	}
}

// CreateUser registers a new ledger owner.
func (s *DirectoryServiceImpl) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	existing, err := s.userRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check user name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameTaken("User")
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("name", name).Msg("user created")
	return user, nil
}

// GetUser loads a ledger owner by id.
func (s *DirectoryServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	return user, nil
}

// CreateAccount opens a funding account with an opening balance.
func (s *DirectoryServiceImpl) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	if in.Name == "" {
		return nil, apperror.Validation("name is required")
	}

	existing, err := s.accountRepo.GetByName(ctx, in.UserID, in.Name)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check account name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameTaken("Account")
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Name:      in.Name,
		Balance:   in.Balance,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account_id", account.ID.String()).Str("name", in.Name).Msg("account created")
	return account, nil
}

// ListAccounts returns the user's funding accounts.
func (s *DirectoryServiceImpl) ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// DeleteAccount removes an account, refusing while non-reversed
// transactions still draw on it.
func (s *DirectoryServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID, name string) error {
	account, err := s.accountRepo.GetByName(ctx, userID, name)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return apperror.ErrNotFound("Account")
	}

	active, err := s.trxRepo.CountActiveByAccount(ctx, userID, name)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("count account transactions: %w", err))
	}
	if active > 0 {
		return apperror.ErrInUse("Account")
	}

	if err := s.accountRepo.Delete(ctx, userID, name); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete account: %w", err))
	}

	s.log.Info().Str("name", name).Msg("account deleted")
	return nil
}

// CreatePartner registers a partner intermediary.
func (s *DirectoryServiceImpl) CreatePartner(ctx context.Context, in ports.CreatePartnerInput) (*domain.Partner, error) {
	if in.Name == "" {
		return nil, apperror.Validation("name is required")
	}

	existing, err := s.partnerRepo.GetByName(ctx, in.UserID, in.Name)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check partner name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameTaken("Partner")
	}

	now := time.Now().UTC()
	partner := &domain.Partner{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Name:      in.Name,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create partner: %w", err))
	}

	s.log.Info().Str("partner_id", partner.ID.String()).Str("name", in.Name).Msg("partner created")
	return partner, nil
}

// ListPartners returns the user's partners.
func (s *DirectoryServiceImpl) ListPartners(ctx context.Context, userID uuid.UUID) ([]domain.Partner, error) {
	partners, err := s.partnerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list partners: %w", err))
	}
	return partners, nil
}

// DeletePartner removes a partner, refusing while non-reversed
// transactions still route through it.
func (s *DirectoryServiceImpl) DeletePartner(ctx context.Context, userID uuid.UUID, name string) error {
	partner, err := s.partnerRepo.GetByName(ctx, userID, name)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("load partner: %w", err))
	}
	if partner == nil {
		return apperror.ErrNotFound("Partner")
	}

	active, err := s.trxRepo.CountActiveByPartner(ctx, userID, name)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("count partner transactions: %w", err))
	}
	if active > 0 {
		return apperror.ErrInUse("Partner")
	}

	if err := s.partnerRepo.Delete(ctx, userID, name); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete partner: %w", err))
	}

	s.log.Info().Str("name", name).Msg("partner deleted")
	return nil
}

var _ ports.DirectoryService = (*DirectoryServiceImpl)(nil)
