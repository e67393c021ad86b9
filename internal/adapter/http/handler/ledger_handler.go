package handler

import (
	"pocket-ledger/internal/adapter/http/dto"
	"pocket-ledger/internal/adapter/http/middleware"
	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"
	"pocket-ledger/pkg/apperror"
	"pocket-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles the open-items and balance snapshot endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// GetLedger handles GET /api/v1/ledger.
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	snapshot, err := h.ledgerSvc.GetLedger(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerResponse{
		Debtors:   toLedgerEntryResponses(snapshot.Debtors),
		Creditors: toLedgerEntryResponses(snapshot.Creditors),
	})
}

// GetBalances handles GET /api/v1/balances.
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	snapshot, err := h.ledgerSvc.GetBalances(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	accounts := make([]dto.AccountResponse, 0, len(snapshot.Accounts))
	for i := range snapshot.Accounts {
		accounts = append(accounts, toAccountResponse(&snapshot.Accounts[i]))
	}
	partners := make([]dto.PartnerResponse, 0, len(snapshot.Partners))
	for i := range snapshot.Partners {
		partners = append(partners, toPartnerResponse(&snapshot.Partners[i]))
	}

	response.OK(c, dto.BalancesResponse{
		Accounts: accounts,
		Partners: partners,
	})
}

func toLedgerEntryResponses(entries []domain.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, dto.LedgerEntryResponse{
			Side:         string(e.Side),
			Counterparty: e.Counterparty,
			Amount:       e.Amount,
			Quantity:     e.Quantity,
			UnitRate:     e.UnitRate,
			OriginTrxID:  e.OriginTrxID.String(),
			UpdatedAt:    e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
