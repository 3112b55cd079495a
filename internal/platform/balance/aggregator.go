package balance

import (
	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/wallet"
	"github.com/masikip/notewallet/pkg/money"
)

// RemoteMetrics is the lighter-weight spend summary reported by the indexer.
// Nil fields mean the indexer was unreachable, not a known zero.
type RemoteMetrics struct {
	SpentAda       *float64 `json:"spent_ada"`
	PendingFeesAda *float64 `json:"pending_fees_ada"`
}

// Snapshot is the derived balance view for one reconciliation pass. It is
// recomputed every pass and never persisted. Nil fields surface to the UI
// as "no data yet"; a known zero is not distinguished.
type Snapshot struct {
	SpentAda         *float64 `json:"spent_ada"`
	PendingFeesAda   *float64 `json:"pending_fees_ada"`
	WalletBalanceAda *float64 `json:"wallet_balance_ada"`
}

// Compute derives spent and pending aggregates from the merged transaction
// set plus the remote metrics. Local confirmed debits top up the remote
// spent figure; local pending entries contribute both their amount and any
// known fee, since the indexer has not seen them yet.
func Compute(merged []history.Transaction, remote RemoteMetrics) Snapshot {
	var localSpent, localPending float64

	for _, tx := range merged {
		if tx.Origin != history.OriginLocal {
			continue
		}
		switch {
		case tx.Direction == history.DirectionDebit && tx.Status == history.StatusConfirmed:
			localSpent += tx.Amount
		case tx.Status == history.StatusPending:
			localPending += tx.Amount + tx.FeeAda
		}
	}

	totalSpent := deref(remote.SpentAda) + localSpent
	totalPending := deref(remote.PendingFeesAda) + localPending

	snapshot := Snapshot{}
	if totalSpent > 0 {
		snapshot.SpentAda = &totalSpent
	}
	if totalPending > 0 {
		snapshot.PendingFeesAda = &totalPending
	}
	return snapshot
}

// WalletBalanceAda sums the wallet's reported spendable outputs. Nil means
// the wallet reported no outputs (or the fetch failed upstream).
func WalletBalanceAda(utxos []wallet.Utxo) *float64 {
	total := SumUtxos(utxos)
	if total == nil {
		return nil
	}
	ada := money.ToAda(total)
	return &ada
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
