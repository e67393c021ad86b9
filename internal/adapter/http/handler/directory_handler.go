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

// DirectoryHandler handles the user, account and partner registries.
type DirectoryHandler struct {
	dirSvc ports.DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(dirSvc ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{dirSvc: dirSvc}
}

// CreateUser handles POST /api/v1/users. The only unscoped write: it
// mints the user id every other request is scoped by.
func (h *DirectoryHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.dirSvc.CreateUser(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toUserResponse(user))
}

// CreateAccount handles POST /api/v1/accounts.
func (h *DirectoryHandler) CreateAccount(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.dirSvc.CreateAccount(c.Request.Context(), ports.CreateAccountInput{
		UserID:   userID.(uuid.UUID),
		Name:     req.Name,
		Balance:  req.Balance,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// ListAccounts handles GET /api/v1/accounts.
func (h *DirectoryHandler) ListAccounts(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	accounts, err := h.dirSvc.ListAccounts(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResponse(&accounts[i]))
	}
	response.OK(c, items)
}

// DeleteAccount handles DELETE /api/v1/accounts/:name.
func (h *DirectoryHandler) DeleteAccount(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	if err := h.dirSvc.DeleteAccount(c.Request.Context(), userID.(uuid.UUID), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": c.Param("name")})
}

// CreatePartner handles POST /api/v1/partners.
func (h *DirectoryHandler) CreatePartner(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	var req dto.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	partner, err := h.dirSvc.CreatePartner(c.Request.Context(), ports.CreatePartnerInput{
		UserID: userID.(uuid.UUID),
		Name:   req.Name,
		Phone:  req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPartnerResponse(partner))
}

// ListPartners handles GET /api/v1/partners.
func (h *DirectoryHandler) ListPartners(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	partners, err := h.dirSvc.ListPartners(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PartnerResponse, 0, len(partners))
	for i := range partners {
		items = append(items, toPartnerResponse(&partners[i]))
	}
	response.OK(c, items)
}

// DeletePartner handles DELETE /api/v1/partners/:name.
func (h *DirectoryHandler) DeletePartner(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUserScope())
		return
	}

	if err := h.dirSvc.DeletePartner(c.Request.Context(), userID.(uuid.UUID), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": c.Param("name")})
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Balance:   a.Balance,
		Quantity:  a.Quantity,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toPartnerResponse(p *domain.Partner) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Phone:     p.Phone,
		Balance:   p.Balance,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
