package handler

import (
	"math"
	"strconv"

	"pocket-ledger/internal/adapter/http/dto"
	"pocket-ledger/internal/adapter/http/middleware"
	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"
	"pocket-ledger/pkg/apperror"
	"pocket-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the transaction log endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.CreateTransaction(c.Request.Context(), ports.CreateTransactionInput{
		UserID:      userID.(uuid.UUID),
		TrxType:     domain.TrxType(req.TrxType),
		Sender:      req.Sender,
		Receiver:    req.Receiver,
		Amount:      req.Amount,
		Rate:        req.Rate,
		Quantity:    req.Quantity,
		FromAccount: req.FromAccount,
		OnBehalfOf:  req.OnBehalfOf,
		Note:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(result))
}

// Reverse handles POST /api/v1/transactions/:id/reverse.
func (h *TransactionHandler) Reverse(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	trxID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	reversal, err := h.ledgerSvc.ReverseTransaction(c.Request.Context(), trxID, userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(reversal))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		UserID:   userID.(uuid.UUID),
		Page:     page,
		PageSize: pageSize,
	}

	if t := c.Query("type"); t != "" {
		trxType := domain.TrxType(t)
		if !trxType.Valid() {
			response.Error(c, apperror.ErrInvalidTrxType())
			return
		}
		params.Type = &trxType
	}

	trxs, total, err := h.ledgerSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(trxs))
	for i := range trxs {
		items = append(items, toTransactionResponse(&trxs[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(trx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:             trx.ID.String(),
		SequenceNumber: trx.SequenceNumber,
		TrxType:        string(trx.TrxType),
		Sender:         trx.Sender,
		Receiver:       trx.Receiver,
		Amount:         trx.Amount,
		Rate:           trx.Rate,
		Quantity:       trx.Quantity,
		FromAccount:    trx.FromAccount,
		OnBehalfOf:     trx.OnBehalfOf,
		Note:           trx.Note,
		Reversed:       trx.Reversed,
		CreatedAt:      trx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if trx.ReversedTrxID != nil {
		s := trx.ReversedTrxID.String()
		resp.ReversedTrxID = &s
	}
	return resp
}
