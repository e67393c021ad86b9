package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocket-ledger/internal/adapter/http/dto"
	"pocket-ledger/internal/adapter/http/middleware"
	"pocket-ledger/internal/core/domain"
	"pocket-ledger/internal/core/ports"
	"pocket-ledger/internal/core/ports/mocks"
	"pocket-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, w *httptest.ResponseRecorder, userID *uuid.UUID, body interface{}) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(http.MethodPost, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != nil {
		c.Set(middleware.CtxUserID, *userID)
	}
	return c
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Directory Handler Tests ---

func TestCreateUser_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDir := mocks.NewMockDirectoryService(ctrl)
	h := NewDirectoryHandler(mockDir)

	userID := uuid.New()
	mockDir.EXPECT().CreateUser(gomock.Any(), "maria").Return(&domain.User{
		ID:        userID,
		Name:      "maria",
		CreatedAt: time.Now(),
	}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, nil, dto.CreateUserRequest{Name: "maria"})

	h.CreateUser(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "maria", data["name"])
}

func TestCreateUser_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewDirectoryHandler(mocks.NewMockDirectoryService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, nil, map[string]string{})

	h.CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser_NameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDir := mocks.NewMockDirectoryService(ctrl)
	h := NewDirectoryHandler(mockDir)

	mockDir.EXPECT().CreateUser(gomock.Any(), "maria").Return(nil, apperror.ErrNameTaken("User"))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, nil, dto.CreateUserRequest{Name: "maria"})

	h.CreateUser(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDir := mocks.NewMockDirectoryService(ctrl)
	h := NewDirectoryHandler(mockDir)

	userID := uuid.New()
	accountID := uuid.New()
	now := time.Now()

	mockDir.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, in ports.CreateAccountInput) (*domain.Account, error) {
			assert.Equal(t, userID, in.UserID)
			assert.Equal(t, "cash", in.Name)
			assert.True(t, in.Balance.Equal(decimal.RequireFromString("1000")))
			return &domain.Account{
				ID: accountID, UserID: userID, Name: "cash",
				Balance: in.Balance, Quantity: in.Quantity,
				CreatedAt: now, UpdatedAt: now,
			}, nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, dto.CreateAccountRequest{
		Name:    "cash",
		Balance: decimal.RequireFromString("1000"),
	})

	h.CreateAccount(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, accountID.String(), data["id"])
	assert.Equal(t, "cash", data["name"])
}

func TestCreateAccount_MissingUserScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewDirectoryHandler(mocks.NewMockDirectoryService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, nil, dto.CreateAccountRequest{Name: "cash"})

	h.CreateAccount(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteAccount_InUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDir := mocks.NewMockDirectoryService(ctrl)
	h := NewDirectoryHandler(mockDir)

	userID := uuid.New()
	mockDir.EXPECT().DeleteAccount(gomock.Any(), userID, "cash").Return(apperror.ErrInUse("Account"))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, nil)
	c.Params = gin.Params{{Key: "name", Value: "cash"}}

	h.DeleteAccount(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPartners_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDir := mocks.NewMockDirectoryService(ctrl)
	h := NewDirectoryHandler(mockDir)

	userID := uuid.New()
	now := time.Now()
	mockDir.EXPECT().ListPartners(gomock.Any(), userID).Return([]domain.Partner{
		{ID: uuid.New(), UserID: userID, Name: "broker", Balance: decimal.Zero, Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, nil)

	h.ListPartners(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp["data"].([]interface{})
	assert.Len(t, items, 1)
}

// --- Transaction Handler Tests ---

func TestCreateTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	trxID := uuid.New()
	now := time.Now()

	mockLedger.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, in ports.CreateTransactionInput) (*domain.Transaction, error) {
			assert.Equal(t, userID, in.UserID)
			assert.Equal(t, domain.TrxTypeSend, in.TrxType)
			assert.Equal(t, "Huy", in.Receiver)
			assert.True(t, in.Amount.Equal(decimal.RequireFromString("1500.50")))
			return &domain.Transaction{
				ID:             trxID,
				SequenceNumber: 7,
				TrxType:        domain.TrxTypeSend,
				Receiver:       "Huy",
				Amount:         in.Amount,
				Rate:           in.Rate,
				Quantity:       in.Quantity,
				FromAccount:    "cash",
				UserID:         userID,
				CreatedAt:      now,
			}, nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, dto.CreateTransactionRequest{
		TrxType:     "send",
		Receiver:    "Huy",
		Amount:      decimal.RequireFromString("1500.50"),
		Rate:        decimal.RequireFromString("1"),
		Quantity:    decimal.RequireFromString("3"),
		FromAccount: "cash",
	})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, trxID.String(), data["id"])
	assert.Equal(t, float64(7), data["sequence_number"])
	assert.Equal(t, "send", data["trx_type"])
}

func TestCreateTransaction_BadType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, map[string]string{
		"trx_type":     "transfer",
		"from_account": "cash",
	})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTransaction_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrNotFound("Account"))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, dto.CreateTransactionRequest{
		TrxType:     "send",
		Receiver:    "Huy",
		Amount:      decimal.RequireFromString("100"),
		FromAccount: "ghost",
	})

	h.Create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReverseTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	origID := uuid.New()
	reversalID := uuid.New()
	now := time.Now()

	mockLedger.EXPECT().ReverseTransaction(gomock.Any(), origID, userID).Return(&domain.Transaction{
		ID:             reversalID,
		SequenceNumber: 8,
		TrxType:        domain.TrxTypeReceive,
		Sender:         "Huy",
		Amount:         decimal.RequireFromString("1500.50"),
		FromAccount:    "cash",
		ReversedTrxID:  &origID,
		UserID:         userID,
		CreatedAt:      now,
	}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, nil)
	c.Params = gin.Params{{Key: "id", Value: origID.String()}}

	h.Reverse(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, reversalID.String(), data["id"])
	assert.Equal(t, origID.String(), data["reversed_trx_id"])
}

func TestReverseTransaction_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Reverse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReverseTransaction_AlreadyReversed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	origID := uuid.New()
	mockLedger.EXPECT().ReverseTransaction(gomock.Any(), origID, userID).Return(nil, apperror.ErrAlreadyReversed())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, &userID, nil)
	c.Params = gin.Params{{Key: "id", Value: origID.String()}}

	h.Reverse(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	now := time.Now()

	mockLedger.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			assert.Equal(t, userID, params.UserID)
			require.NotNil(t, params.Type)
			assert.Equal(t, domain.TrxTypeSend, *params.Type)
			assert.Equal(t, 2, params.Page)
			return []domain.Transaction{
				{ID: uuid.New(), SequenceNumber: 5, TrxType: domain.TrxTypeSend, Receiver: "Huy", FromAccount: "cash", UserID: userID, CreatedAt: now},
			}, int64(21), nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2&page_size=20&type=send", nil)
	c.Set(middleware.CtxUserID, userID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(21), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
}

func TestListTransactions_InvalidTypeFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewTransactionHandler(mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?type=transfer", nil)
	c.Set(middleware.CtxUserID, userID)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Ledger Handler Tests ---

func TestGetLedger_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	now := time.Now()

	mockLedger.EXPECT().GetLedger(gomock.Any(), userID).Return(&ports.LedgerSnapshot{
		Debtors: []domain.LedgerEntry{
			{UserID: userID, Side: domain.SideDebtor, Counterparty: "Huy",
				Amount: decimal.RequireFromString("500"), Quantity: decimal.RequireFromString("2"),
				UnitRate: decimal.RequireFromString("250"), OriginTrxID: uuid.New(),
				CreatedAt: now, UpdatedAt: now},
		},
		Creditors: []domain.LedgerEntry{},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.GetLedger(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	debtors := data["debtors"].([]interface{})
	require.Len(t, debtors, 1)
	first := debtors[0].(map[string]interface{})
	assert.Equal(t, "Huy", first["counterparty"])
	assert.Equal(t, "debtor", first["side"])
	assert.Empty(t, data["creditors"])
}

func TestGetBalances_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	now := time.Now()

	mockLedger.EXPECT().GetBalances(gomock.Any(), userID).Return(&ports.BalanceSnapshot{
		Accounts: []domain.Account{
			{ID: uuid.New(), UserID: userID, Name: "cash", Balance: decimal.RequireFromString("-150"), Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now},
		},
		Partners: []domain.Partner{
			{ID: uuid.New(), UserID: userID, Name: "broker", Balance: decimal.RequireFromString("150"), Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now},
		},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.GetBalances(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	accounts := data["accounts"].([]interface{})
	partners := data["partners"].([]interface{})
	assert.Len(t, accounts, 1)
	assert.Len(t, partners, 1)
}

func TestGetLedger_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().GetLedger(gomock.Any(), userID).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxUserID, userID)

	h.GetLedger(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
