package koios_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/internal/infra/gateway/koios"
	"github.com/masikip/notewallet/internal/platform/history"
)

func newAdapter(cfg *history.Config, bases ...string) *koios.IndexerAdapter {
	return koios.NewIndexerAdapter(newClient(bases...), cfg, testLogger())
}

// indexerServer serves the three Koios endpoints the adapter touches and
// records which hashes were requested from /tx_info.
func indexerServer(t *testing.T, summaries []koios.TxSummary, infos []koios.TxInfo, statuses []koios.TxStatus, requestedHashes *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/address_tx_history":
			writeJSON(w, summaries)
		case "/tx_info":
			if requestedHashes != nil {
				var payload map[string][]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				*requestedHashes = payload["_tx_hashes"]
			}
			writeJSON(w, infos)
		case "/tx_status":
			writeJSON(w, statuses)
		default:
			http.Error(w, "unexpected path", http.StatusNotFound)
		}
	}))
}

func TestHistory_MapsBodiesAndStatuses(t *testing.T) {
	summaries := []koios.TxSummary{{TxHash: "aa11"}}
	infos := []koios.TxInfo{{
		TxHash:    "aa11",
		BlockTime: 1758279840,
		Fee:       "176985",
		Inputs:    []koios.TxIO{{PaymentAddr: koios.PaymentAddr{Bech32: testAddr}, Value: "5000000"}},
		Outputs: []koios.TxIO{
			{PaymentAddr: koios.PaymentAddr{Bech32: "addr_test1qzother"}, Value: "2000000"},
			{PaymentAddr: koios.PaymentAddr{Bech32: testAddr}, Value: "2823015"},
		},
	}}
	statuses := []koios.TxStatus{{TxHash: "aa11", Status: "confirmed", NumConfirmations: 12}}

	server := indexerServer(t, summaries, infos, statuses, nil)
	defer server.Close()

	remote, statusMap := newAdapter(nil, server.URL).History(context.Background(), testAddr)
	require.Len(t, remote, 1)

	tx := remote[0]
	assert.Equal(t, "aa11", tx.Hash)
	assert.Equal(t, time.Unix(1758279840, 0).UTC(), tx.BlockTime)
	require.NotNil(t, tx.Fee)
	assert.Equal(t, "176985", tx.Fee.String())
	require.Len(t, tx.Inputs, 1)
	assert.Equal(t, testAddr, tx.Inputs[0].Address)
	assert.Equal(t, "5000000", tx.Inputs[0].Value.String())
	require.Len(t, tx.Outputs, 2)

	assert.Equal(t, map[string]string{"aa11": "confirmed"}, statusMap)
}

func TestHistory_CapsRequestedHashes(t *testing.T) {
	summaries := []koios.TxSummary{{TxHash: "aa11"}, {TxHash: "bb22"}, {TxHash: "cc33"}}

	var requested []string
	server := indexerServer(t, summaries, nil, nil, &requested)
	defer server.Close()

	cfg := history.DefaultConfig()
	cfg.HistoryLimit = 2

	newAdapter(cfg, server.URL).History(context.Background(), testAddr)
	assert.Equal(t, []string{"aa11", "bb22"}, requested)
}

func TestHistory_UnreachableIndexerReturnsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	remote, statusMap := newAdapter(nil, server.URL).History(context.Background(), testAddr)
	assert.Nil(t, remote)
	assert.Nil(t, statusMap)
}

func TestMetrics_SumsOwnInputsAndAllFees(t *testing.T) {
	summaries := []koios.TxSummary{{TxHash: "aa11"}, {TxHash: "bb22"}}
	infos := []koios.TxInfo{
		{
			TxHash: "aa11",
			Fee:    "176985",
			Inputs: []koios.TxIO{
				{PaymentAddr: koios.PaymentAddr{Bech32: testAddr}, Value: "2000000"},
				{PaymentAddr: koios.PaymentAddr{Bech32: "addr_test1qzother"}, Value: "9000000"},
			},
		},
		{
			TxHash: "bb22",
			Fee:    "180000",
			Inputs: []koios.TxIO{{PaymentAddr: koios.PaymentAddr{Bech32: testAddr}, Value: "1000000"}},
		},
	}

	server := indexerServer(t, summaries, infos, nil, nil)
	defer server.Close()

	metrics := newAdapter(nil, server.URL).Metrics(context.Background(), testAddr)
	require.NotNil(t, metrics.SpentAda)
	require.NotNil(t, metrics.PendingFeesAda)
	assert.InDelta(t, 3.0, *metrics.SpentAda, 1e-9)
	assert.InDelta(t, 0.356985, *metrics.PendingFeesAda, 1e-9)
}

func TestMetrics_NoUsableHashesIsZeroNotUnknown(t *testing.T) {
	// The endpoint answered, but none of the entries carried a hash under
	// any known field name. There is nothing to spend, so the totals are a
	// definite zero rather than an unreachable-indexer unknown.
	server := indexerServer(t, []koios.TxSummary{{BlockTime: 1758279840}}, nil, nil, nil)
	defer server.Close()

	metrics := newAdapter(nil, server.URL).Metrics(context.Background(), testAddr)
	require.NotNil(t, metrics.SpentAda)
	require.NotNil(t, metrics.PendingFeesAda)
	assert.Zero(t, *metrics.SpentAda)
	assert.Zero(t, *metrics.PendingFeesAda)
}

func TestMetrics_UnreachableIndexerIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	metrics := newAdapter(nil, server.URL).Metrics(context.Background(), testAddr)
	assert.Nil(t, metrics.SpentAda)
	assert.Nil(t, metrics.PendingFeesAda)
}
