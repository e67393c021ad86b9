package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateTransactionRequest{
		TrxType:     " send ",
		Receiver:    "  Huy  ",
		FromAccount: " cash ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "send", req.TrxType)
	assert.Equal(t, "Huy", req.Receiver)
	assert.Equal(t, "cash", req.FromAccount)
}

func TestSanitizeStruct_PreservesInnerContent(t *testing.T) {
	req := CreatePartnerRequest{Name: "  Ngân hàng A & B  "}
	SanitizeStruct(&req)

	assert.Equal(t, "Ngân hàng A & B", req.Name)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	note := "  paid via broker  "
	req := CreateTransactionRequest{
		TrxType:     "send",
		Receiver:    "Huy",
		FromAccount: "cash",
		Note:        &note,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "paid via broker", *req.Note)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CreateTransactionRequest{
		TrxType:     "receive",
		Sender:      "Lan",
		FromAccount: "bank",
		OnBehalfOf:  nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.OnBehalfOf)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}
