package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/internal/platform/auth"
	"github.com/masikip/notewallet/internal/platform/balance"
	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/payment"
	"github.com/masikip/notewallet/internal/platform/session"
	"github.com/masikip/notewallet/internal/platform/wallet"
	"github.com/masikip/notewallet/internal/transport/httpapi"
	"github.com/masikip/notewallet/internal/transport/httpapi/handler"
	"github.com/masikip/notewallet/internal/transport/httpapi/middleware"
	"github.com/masikip/notewallet/pkg/logger"
)

const testPassphrase = "correct horse battery staple"

type stubRegistry struct {
	providers []wallet.ProviderInfo
	handle    wallet.Handle
}

func (s *stubRegistry) ListAvailable(context.Context) ([]wallet.ProviderInfo, error) {
	return s.providers, nil
}

func (s *stubRegistry) Enable(context.Context, string) (wallet.Handle, error) {
	return s.handle, nil
}

type stubHandle struct{}

func (stubHandle) GetRewardAddresses(context.Context) ([]string, error) { return nil, nil }
func (stubHandle) GetUsedAddresses(context.Context) ([]string, error) {
	return []string{"addr_test1qzaccount"}, nil
}
func (stubHandle) GetChangeAddress(context.Context) (string, error) { return "", nil }
func (stubHandle) GetUtxos(context.Context) ([]wallet.Utxo, error) {
	return []wallet.Utxo{wallet.Utxo([]byte(`{"amount":[{"unit":"lovelace","quantity":"4000000"}]}`))}, nil
}
func (stubHandle) SignTx(_ context.Context, tx string, _ bool) (string, error) {
	return "signed:" + tx, nil
}
func (stubHandle) SubmitTx(context.Context, string) (string, error) { return "cafebabe", nil }
func (stubHandle) BuildTx(context.Context, wallet.PaymentRequest) (wallet.BuiltTx, error) {
	return wallet.BuiltTx{UnsignedTx: "84a300...", FeeLovelace: "170000"}, nil
}

type stubIndexer struct{}

func (stubIndexer) History(context.Context, string) ([]history.RemoteTx, map[string]string) {
	return nil, nil
}
func (stubIndexer) Metrics(context.Context, string) balance.RemoteMetrics {
	return balance.RemoteMetrics{}
}

type memStore struct {
	logs map[string][]history.Transaction
}

func (m *memStore) Load(_ context.Context, address string) ([]history.Transaction, error) {
	return m.logs[address], nil
}

func (m *memStore) Append(_ context.Context, address string, tx history.Transaction) error {
	m.logs[address] = append([]history.Transaction{tx}, m.logs[address]...)
	return nil
}

func (m *memStore) UpdateStatus(context.Context, string, []string, history.Status) error {
	return nil
}

type memRestore struct {
	walletName, address string
	found               bool
}

func (m *memRestore) Save(_ context.Context, walletName, address string) error {
	m.walletName, m.address, m.found = walletName, address, true
	return nil
}

func (m *memRestore) Load(context.Context) (string, string, bool, error) {
	return m.walletName, m.address, m.found, nil
}

func (m *memRestore) Clear(context.Context) error {
	m.found = false
	return nil
}

// newAPI wires a full router around in-memory collaborators
func newAPI(t *testing.T, providers []wallet.ProviderInfo) http.Handler {
	t.Helper()
	log := logger.New("development", io.Discard)

	hash, err := auth.HashPassphrase(testPassphrase)
	require.NoError(t, err)

	jwtSvc := middleware.NewJWTService("0123456789abcdef0123456789abcdef")
	historyCfg := history.DefaultConfig()
	store := &memStore{logs: map[string][]history.Transaction{}}

	controller := session.NewController(
		&session.Config{RefreshInterval: time.Minute, RefreshEnabled: false},
		&stubRegistry{providers: providers, handle: stubHandle{}},
		stubIndexer{},
		store,
		&memRestore{},
		history.NewReconciler(historyCfg, log),
		payment.NewService(nil, historyCfg, store, log),
		log,
	)

	return httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: []string{"*"},
		AuthHandler:    handler.NewAuthHandler(auth.NewService(hash, log), jwtSvc),
		SessionHandler: handler.NewSessionHandler(controller),
		PaymentHandler: handler.NewPaymentHandler(controller),
		JWTMiddleware:  middleware.JWTMiddleware(jwtSvc),
	})
}

func doJSON(t *testing.T, api http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, api http.Handler) string {
	t.Helper()
	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"passphrase": testPassphrase})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	api := newAPI(t, nil)

	t.Run("valid passphrase", func(t *testing.T) {
		login(t, api)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"passphrase": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing passphrase", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newAPI(t, nil)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/v1/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	api := newAPI(t, []wallet.ProviderInfo{{Name: "eternl"}})
	token := login(t, api)

	// Starts disconnected
	rec := doJSON(t, api, http.MethodGet, "/api/v1/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, wallet.StateDisconnected, snapshot.State)

	// Connect
	rec = doJSON(t, api, http.MethodPost, "/api/v1/session/connect", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, wallet.StateConnected, snapshot.State)
	require.NotNil(t, snapshot.Account)
	assert.Equal(t, "eternl", snapshot.Account.WalletName)

	// Balance reflects the wallet utxos
	rec = doJSON(t, api, http.MethodGet, "/api/v1/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bal balance.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bal))
	require.NotNil(t, bal.WalletBalanceAda)
	assert.InDelta(t, 4.0, *bal.WalletBalanceAda, 1e-9)

	// Disconnect
	rec = doJSON(t, api, http.MethodDelete, "/api/v1/session", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/v1/session", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, wallet.StateDisconnected, snapshot.State)
}

func TestConnect_NoWalletProvider(t *testing.T) {
	api := newAPI(t, nil)
	token := login(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/session/connect", token, nil)
	assert.Equal(t, http.StatusFailedDependency, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no Cardano wallet detected")
}

func TestTransactions(t *testing.T) {
	api := newAPI(t, []wallet.ProviderInfo{{Name: "eternl"}})
	token := login(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.TransactionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Transactions)
}

func TestCreatePayment(t *testing.T) {
	api := newAPI(t, []wallet.ProviderInfo{{Name: "eternl"}})
	token := login(t, api)

	t.Run("requires connection", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/payments", token, map[string]any{"operation": "CREATE"})
		assert.Equal(t, http.StatusFailedDependency, rec.Code)
	})

	rec := doJSON(t, api, http.MethodPost, "/api/v1/session/connect", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("missing operation", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/payments", token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown operation", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/payments", token, map[string]any{"operation": "RENAME"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create payment", func(t *testing.T) {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/payments", token, map[string]any{
			"operation": "CREATE",
			"memo":      []string{"first note"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var tx history.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
		assert.Equal(t, "cafebabe", tx.ID)
		assert.Equal(t, history.StatusPending, tx.Status)
		assert.Equal(t, history.ActionCreate, tx.Action)
	})
}
