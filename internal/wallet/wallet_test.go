package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/ledgerhub/internal/httpx"
	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/ledger/memory"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

type noTokens struct{}

func (noTokens) Issue(string, bool) (string, error) { return "t", nil }

type env struct {
	e   *echo.Echo
	svc *ledger.Service
}

func newEnv(t *testing.T, resolver ledger.Resolver) *env {
	t.Helper()
	svc := ledger.NewService(ledger.Options{
		Store:      memory.NewStore(),
		Tokens:     noTokens{},
		Logger:     logging.Discard(),
		Resolver:   resolver,
		BcryptCost: bcrypt.MinCost,
	})
	h := NewHandler(svc, logging.Discard())

	e := httpx.New(logging.Discard())
	e.POST("/api/deposit", h.Deposit)
	e.GET("/api/transactions/:userId", h.ListTransactions)
	e.POST("/api/approve-deposit", h.ApproveDeposit)
	e.POST("/api/reject-deposit", h.RejectDeposit)
	e.GET("/api/admin/deposits/pending", h.ListPending)
	e.GET("/api/admin/transactions", h.ListAll)
	return &env{e: e, svc: svc}
}

func (v *env) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func (v *env) user(t *testing.T, email string) *ledger.User {
	t.Helper()
	u, err := v.svc.Register(context.Background(), email, "name", "pw")
	require.NoError(t, err)
	return u
}

func (v *env) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	u, err := v.svc.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func decodeDeposit(t *testing.T, rec *httptest.ResponseRecorder) DepositResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out DepositResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDeposit_CryptoMethod(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")

	out := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":50}`))
	assert.Equal(t, "35DrUNecGXnuhQvizUTxYD42WN9PqcHUHz", out.Address)
	assert.Len(t, out.TxID, ledger.ReferenceLength)
	assert.Equal(t, ledger.StatusPending, out.Status)
	assert.Equal(t, "Send $50 to this address: 35DrUNecGXnuhQvizUTxYD42WN9PqcHUHz\nTX ID: "+out.TxID, out.Message)
	assert.True(t, v.balance(t, u.ID).IsZero())
}

func TestDeposit_ManualReview(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")

	out := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"bank_transfer","amount":"12.5"}`))
	assert.Empty(t, out.Address)
	assert.Equal(t, "Deposit of $12.5 via BANK_TRANSFER is being reviewed.", out.Message)
}

func TestDeposit_Invalid(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")

	for _, body := range []string{
		`{"userId":"` + u.ID + `","method":"BTC","amount":0}`,
		`{"userId":"` + u.ID + `","method":"BTC","amount":-5}`,
		`{"userId":"` + u.ID + `","method":"BTC","amount":0.000000001}`,
		`{"userId":"` + u.ID + `","method":"BTC","amount":10000000000000000}`,
		`{"userId":"` + u.ID + `","method":"BTC"}`,
		`{"userId":"` + u.ID + `","method":"DOGE","amount":5}`,
		`{"userId":"` + u.ID + `","amount":5}`,
		`{"userId":"` + u.ID + `","method":"BTC","amount":"lots"}`,
		`{"method":"BTC","amount":5}`,
	} {
		rec := v.do(http.MethodPost, "/api/deposit", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Invalid data"}`, rec.Body.String(), body)
	}

	txs, err := v.svc.ListTransactions(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)

	rec := v.do(http.MethodPost, "/api/deposit", `{"userId":"ghost","method":"BTC","amount":5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeposit_ResolvedSuccessfulCredits(t *testing.T) {
	v := newEnv(t, ledger.ResolverFunc(func(context.Context, ledger.Method, decimal.Decimal) ledger.Status {
		return ledger.StatusSuccessful
	}))
	u := v.user(t, "a@x.com")

	out := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"ETH","amount":7}`))
	assert.Equal(t, ledger.StatusSuccessful, out.Status)
	assert.True(t, v.balance(t, u.ID).Equal(decimal.NewFromInt(7)))
}

func TestApproveDeposit_CreditsOnce(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")
	dep := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"USDT","amount":25}`))

	rec := v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"`+dep.TxID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first ApproveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "Deposit approved!", first.Message)
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(25)))

	rec = v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"`+dep.TxID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second ApproveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "Deposit already approved.", second.Message)

	assert.True(t, v.balance(t, u.ID).Equal(decimal.NewFromInt(25)))
}

func TestApproveDeposit_Errors(t *testing.T) {
	v := newEnv(t, nil)

	rec := v.do(http.MethodPost, "/api/approve-deposit", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"unknown"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Transaction not found"}`, rec.Body.String())
}

func TestRejectDeposit(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")
	dep := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":3}`))
	other := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":4}`))

	rec := v.do(http.MethodPost, "/api/reject-deposit", `{"txId":"`+dep.TxID+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"`+other.TxID+`"}`).Code)
	rec = v.do(http.MethodPost, "/api/reject-deposit", `{"txId":"`+other.TxID+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// a rejected deposit can still be approved later
	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"`+dep.TxID+`"}`).Code)
	assert.True(t, v.balance(t, u.ID).Equal(decimal.NewFromInt(7)))
}

func TestListTransactions_NewestFirst(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")
	first := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":1}`))
	second := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":2}`))

	rec := v.do(http.MethodGet, "/api/transactions/"+u.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []ledger.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, second.TxID, txs[0].Reference)
	assert.Equal(t, first.TxID, txs[1].Reference)

	rec = v.do(http.MethodGet, "/api/transactions/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdminLists(t *testing.T) {
	v := newEnv(t, nil)
	u := v.user(t, "a@x.com")
	pending := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":1}`))
	approved := decodeDeposit(t, v.do(http.MethodPost, "/api/deposit", `{"userId":"`+u.ID+`","method":"BTC","amount":2}`))
	require.Equal(t, http.StatusOK, v.do(http.MethodPost, "/api/approve-deposit", `{"txId":"`+approved.TxID+`"}`).Code)

	var body struct {
		Transactions []ledger.Transaction `json:"transactions"`
	}
	rec := v.do(http.MethodGet, "/api/admin/deposits/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, pending.TxID, body.Transactions[0].Reference)

	rec = v.do(http.MethodGet, "/api/admin/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Transactions, 2)
}
