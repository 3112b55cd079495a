package history_test

import (
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/pkg/logger"
)

const testAddr = "addr_test1qzexampleaccount"

func newReconciler(t *testing.T) *history.Reconciler {
	t.Helper()
	return history.NewReconciler(history.DefaultConfig(), logger.New("development", io.Discard))
}

func lovelace(ada int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(ada), big.NewInt(1_000_000))
}

func blockTime(offset time.Duration) time.Time {
	return time.Date(2025, 9, 19, 12, 0, 0, 0, time.UTC).Add(offset)
}

func TestClassifyRemote_Directions(t *testing.T) {
	r := newReconciler(t)

	t.Run("inputs only is a debit of the attributable sum", func(t *testing.T) {
		tx := history.RemoteTx{
			Hash:      "aa11",
			BlockTime: blockTime(0),
			Inputs: []history.AddressValue{
				{Address: testAddr, Value: lovelace(3)},
				{Address: "addr_test1qzother", Value: lovelace(9)},
				{Address: testAddr, Value: lovelace(2)},
			},
			Outputs: []history.AddressValue{{Address: "addr_test1qzother", Value: lovelace(14)}},
		}
		result, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		require.True(t, ok)
		assert.Equal(t, history.DirectionDebit, result.Direction)
		assert.InDelta(t, 5.0, result.Amount, 1e-9)
		assert.Equal(t, history.StatusConfirmed, result.Status)
		assert.Equal(t, history.OriginRemote, result.Origin)
	})

	t.Run("outputs only is a credit", func(t *testing.T) {
		tx := history.RemoteTx{
			Hash:      "bb22",
			BlockTime: blockTime(0),
			Outputs: []history.AddressValue{
				{Address: testAddr, Value: lovelace(7)},
			},
		}
		result, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		require.True(t, ok)
		assert.Equal(t, history.DirectionCredit, result.Direction)
		assert.InDelta(t, 7.0, result.Amount, 1e-9)
	})

	t.Run("change-returning send nets to the fee side", func(t *testing.T) {
		// 10 ADA in, 8 ADA back as change: a 2 ADA net debit, not a 10 ADA one
		tx := history.RemoteTx{
			Hash:      "cc33",
			BlockTime: blockTime(0),
			Inputs:    []history.AddressValue{{Address: testAddr, Value: lovelace(10)}},
			Outputs: []history.AddressValue{
				{Address: "addr_test1qzrecipient", Value: lovelace(2)},
				{Address: testAddr, Value: lovelace(8)},
			},
		}
		result, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		require.True(t, ok)
		assert.Equal(t, history.DirectionDebit, result.Direction)
		assert.InDelta(t, 2.0, result.Amount, 1e-9)
	})

	t.Run("net credit when outputs exceed inputs", func(t *testing.T) {
		tx := history.RemoteTx{
			Hash:      "dd44",
			BlockTime: blockTime(0),
			Inputs:    []history.AddressValue{{Address: testAddr, Value: lovelace(1)}},
			Outputs:   []history.AddressValue{{Address: testAddr, Value: lovelace(4)}},
		}
		result, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		require.True(t, ok)
		assert.Equal(t, history.DirectionCredit, result.Direction)
		assert.InDelta(t, 3.0, result.Amount, 1e-9)
	})

	t.Run("unrelated transaction is dropped", func(t *testing.T) {
		tx := history.RemoteTx{
			Hash:      "ee55",
			BlockTime: blockTime(0),
			Inputs:    []history.AddressValue{{Address: "addr_test1qzother", Value: lovelace(5)}},
			Outputs:   []history.AddressValue{{Address: "addr_test1qzother2", Value: lovelace(5)}},
		}
		_, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		assert.False(t, ok)
	})

	t.Run("equal self-payment nets to zero and is dropped", func(t *testing.T) {
		tx := history.RemoteTx{
			Hash:      "ff66",
			BlockTime: blockTime(0),
			Inputs:    []history.AddressValue{{Address: testAddr, Value: lovelace(5)}},
			Outputs:   []history.AddressValue{{Address: testAddr, Value: lovelace(5)}},
		}
		_, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		assert.False(t, ok)
	})

	t.Run("missing hash is dropped", func(t *testing.T) {
		tx := history.RemoteTx{
			BlockTime: blockTime(0),
			Outputs:   []history.AddressValue{{Address: testAddr, Value: lovelace(5)}},
		}
		_, ok := r.ClassifyRemote(tx, testAddr, "confirmed", blockTime(0))
		assert.False(t, ok)
	})
}

func TestClassifyRemote_StatusDerivation(t *testing.T) {
	r := newReconciler(t)
	now := blockTime(time.Hour)

	base := history.RemoteTx{
		Hash:    "aa11",
		Outputs: []history.AddressValue{{Address: testAddr, Value: lovelace(2)}},
	}

	t.Run("indexer confirmed", func(t *testing.T) {
		result, ok := r.ClassifyRemote(base, testAddr, "confirmed", now)
		require.True(t, ok)
		assert.Equal(t, history.StatusConfirmed, result.Status)
	})

	t.Run("block timestamp implies confirmed", func(t *testing.T) {
		tx := base
		tx.BlockTime = blockTime(0)
		result, ok := r.ClassifyRemote(tx, testAddr, "", now)
		require.True(t, ok)
		assert.Equal(t, history.StatusConfirmed, result.Status)
		assert.Equal(t, blockTime(0), result.Timestamp)
	})

	t.Run("neither means pending and stamped with now", func(t *testing.T) {
		result, ok := r.ClassifyRemote(base, testAddr, "", now)
		require.True(t, ok)
		assert.Equal(t, history.StatusPending, result.Status)
		assert.Equal(t, now, result.Timestamp)
	})
}

func TestMerge_LocalSeedsAndStatusUpgrade(t *testing.T) {
	r := newReconciler(t)

	local := []history.Transaction{
		{
			ID:        "shared",
			Direction: history.DirectionDebit,
			Action:    history.ActionCreate,
			Label:     "Note Creation Payment",
			Amount:    2.0,
			Timestamp: blockTime(-time.Minute),
			Status:    history.StatusPending,
			Origin:    history.OriginLocal,
		},
	}
	remote := []history.Transaction{
		{
			ID:        "shared",
			Direction: history.DirectionDebit,
			Amount:    2.0,
			Timestamp: blockTime(0),
			Status:    history.StatusConfirmed,
			Origin:    history.OriginRemote,
		},
		{
			ID:        "remote-only",
			Direction: history.DirectionCredit,
			Amount:    4.0,
			Timestamp: blockTime(-2 * time.Minute),
			Status:    history.StatusConfirmed,
			Origin:    history.OriginRemote,
		},
	}

	merged := r.Merge(local, remote)
	require.Len(t, merged, 2)

	var shared history.Transaction
	for _, tx := range merged {
		if tx.ID == "shared" {
			shared = tx
		}
	}
	// Local metadata wins, remote confirmation upgrades status
	assert.Equal(t, history.ActionCreate, shared.Action)
	assert.Equal(t, history.OriginLocal, shared.Origin)
	assert.Equal(t, history.StatusConfirmed, shared.Status)
}

func TestMerge_ConfirmedNeverRegresses(t *testing.T) {
	r := newReconciler(t)

	local := []history.Transaction{
		{ID: "tx1", Amount: 1.0, Timestamp: blockTime(0), Status: history.StatusConfirmed, Origin: history.OriginLocal},
	}
	remote := []history.Transaction{
		{ID: "tx1", Amount: 1.0, Timestamp: blockTime(0), Status: history.StatusPending, Origin: history.OriginRemote},
	}

	merged := r.Merge(local, remote)
	require.Len(t, merged, 1)
	assert.Equal(t, history.StatusConfirmed, merged[0].Status)
}

func TestMerge_FiltersZeroAmountAndMissingID(t *testing.T) {
	r := newReconciler(t)

	local := []history.Transaction{
		{ID: "", Amount: 3.0, Timestamp: blockTime(0), Status: history.StatusPending},
		{ID: "zero", Amount: 0, Timestamp: blockTime(0), Status: history.StatusPending},
		{ID: "keep", Amount: 1.0, Timestamp: blockTime(0), Status: history.StatusPending},
	}

	merged := r.Merge(local, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "keep", merged[0].ID)
}

func TestMerge_SortsNewestFirstWithStableTieBreak(t *testing.T) {
	r := newReconciler(t)

	local := []history.Transaction{
		{ID: "b-tied", Amount: 1, Timestamp: blockTime(0), Status: history.StatusConfirmed},
		{ID: "old", Amount: 1, Timestamp: blockTime(-time.Hour), Status: history.StatusConfirmed},
		{ID: "a-tied", Amount: 1, Timestamp: blockTime(0), Status: history.StatusConfirmed},
		{ID: "new", Amount: 1, Timestamp: blockTime(time.Hour), Status: history.StatusConfirmed},
	}

	merged := r.Merge(local, nil)
	ids := make([]string, len(merged))
	for i, tx := range merged {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"new", "a-tied", "b-tied", "old"}, ids)
}

func TestPromoteAged(t *testing.T) {
	r := newReconciler(t)
	now := blockTime(0)

	txs := []history.Transaction{
		{ID: "aged", Amount: 1, Timestamp: now.Add(-3 * time.Minute), Status: history.StatusPending, Origin: history.OriginLocal},
		{ID: "fresh", Amount: 1, Timestamp: now.Add(-30 * time.Second), Status: history.StatusPending, Origin: history.OriginLocal},
		{ID: "remote", Amount: 1, Timestamp: now.Add(-time.Hour), Status: history.StatusPending, Origin: history.OriginRemote},
		{ID: "done", Amount: 1, Timestamp: now.Add(-time.Hour), Status: history.StatusConfirmed, Origin: history.OriginLocal},
	}

	promoted := r.PromoteAged(txs, now)
	assert.Equal(t, []string{"aged"}, promoted)

	byID := make(map[string]history.Status)
	for _, tx := range txs {
		byID[tx.ID] = tx.Status
	}
	assert.Equal(t, history.StatusConfirmed, byID["aged"])
	assert.Equal(t, history.StatusPending, byID["fresh"])
	assert.Equal(t, history.StatusPending, byID["remote"])
	assert.Equal(t, history.StatusConfirmed, byID["done"])
}

func TestReconcile_Idempotent(t *testing.T) {
	r := newReconciler(t)
	now := blockTime(time.Hour)

	local := []history.Transaction{
		{ID: "local1", Direction: history.DirectionDebit, Amount: 2.0, Timestamp: blockTime(-time.Minute), Status: history.StatusConfirmed, Origin: history.OriginLocal},
	}
	remote := []history.RemoteTx{
		{
			Hash:      "remote1",
			BlockTime: blockTime(0),
			Outputs:   []history.AddressValue{{Address: testAddr, Value: lovelace(3)}},
		},
		{
			Hash:      "local1",
			BlockTime: blockTime(-time.Minute),
			Inputs:    []history.AddressValue{{Address: testAddr, Value: lovelace(2)}},
		},
		{
			// Still in the mempool: no block time, so the entry's timestamp
			// falls back to the reconciliation instant
			Hash:    "unblocked",
			Outputs: []history.AddressValue{{Address: testAddr, Value: lovelace(1)}},
		},
	}
	statuses := map[string]string{"remote1": "confirmed", "local1": "confirmed"}

	first := r.Reconcile(local, remote, statuses, testAddr, now)
	second := r.Reconcile(local, remote, statuses, testAddr, now)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "unblocked", first[0].ID)
	assert.Equal(t, now, first[0].Timestamp)
	assert.Equal(t, history.StatusPending, first[0].Status)
	assert.Equal(t, "remote1", first[1].ID)
	assert.Equal(t, "local1", first[2].ID)
}
