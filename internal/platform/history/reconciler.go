package history

import (
	"math/big"
	"sort"
	"time"

	"github.com/masikip/notewallet/pkg/logger"
	"github.com/masikip/notewallet/pkg/money"
)

// Reconciler merges remote (indexer-observed) and local (client-submitted)
// transaction views into one de-duplicated, classified, sorted list.
type Reconciler struct {
	cfg        *Config
	classifier *Classifier
	logger     *logger.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(cfg *Config, log *logger.Logger) *Reconciler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()

	return &Reconciler{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		logger:     log.WithField("component", "reconciler"),
	}
}

// ClassifyRemote converts one remote transaction body into a user-facing
// Transaction for the given account address. A transaction not yet in a
// block carries no timestamp of its own and is stamped with now instead.
// It returns false when the transaction is not attributable to the account
// or nets to zero.
func (r *Reconciler) ClassifyRemote(tx RemoteTx, address, indexerStatus string, now time.Time) (Transaction, bool) {
	inputTotal := sumFor(tx.Inputs, address)
	outputTotal := sumFor(tx.Outputs, address)

	hasInput := inputTotal.Sign() > 0
	hasOutput := outputTotal.Sign() > 0

	var amount *big.Int
	var direction Direction

	switch {
	case hasInput && !hasOutput:
		direction = DirectionDebit
		amount = inputTotal
	case hasOutput && !hasInput:
		direction = DirectionCredit
		amount = outputTotal
	case hasInput && hasOutput:
		// Change-returning send: the net movement is what matters, which
		// correctly reduces a self-payment to its fee.
		net := new(big.Int).Sub(outputTotal, inputTotal)
		if net.Sign() < 0 {
			direction = DirectionDebit
			amount = net.Neg(net)
		} else {
			direction = DirectionCredit
			amount = net
		}
	default:
		// Not attributable to this account at all
		return Transaction{}, false
	}

	if tx.Hash == "" || amount.Sign() == 0 {
		return Transaction{}, false
	}

	status := StatusPending
	if tx.Confirmed(indexerStatus) {
		status = StatusConfirmed
	}

	timestamp := tx.BlockTime
	if timestamp.IsZero() {
		timestamp = now
	}

	result := Transaction{
		ID:        tx.Hash,
		Direction: direction,
		Amount:    money.ToAda(amount),
		Currency:  "ADA",
		Timestamp: timestamp,
		Status:    status,
		Origin:    OriginRemote,
	}
	r.classifier.Classify(&result)
	return result, true
}

// Merge combines the local log with remote observations, keyed by
// transaction id. Local entries seed the result because they carry richer
// metadata (explicit action, description). A remote sighting of a local
// entry only ever upgrades its status pending to confirmed; a confirmed
// entry never regresses.
func (r *Reconciler) Merge(local, remote []Transaction) []Transaction {
	byID := make(map[string]*Transaction, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	for i := range local {
		tx := local[i]
		if tx.ID == "" {
			continue
		}
		tx.Origin = OriginLocal
		if _, exists := byID[tx.ID]; exists {
			continue
		}
		byID[tx.ID] = &tx
		order = append(order, tx.ID)
	}

	for i := range remote {
		tx := remote[i]
		if tx.ID == "" {
			continue
		}
		if existing, ok := byID[tx.ID]; ok {
			if existing.Status != StatusConfirmed && tx.Status == StatusConfirmed {
				existing.Status = StatusConfirmed
			}
			continue
		}
		byID[tx.ID] = &tx
		order = append(order, tx.ID)
	}

	merged := make([]Transaction, 0, len(order))
	for _, id := range order {
		tx := *byID[id]
		if tx.Amount <= 0 {
			continue
		}
		merged = append(merged, tx)
	}

	sortNewestFirst(merged)
	return merged
}

// PromoteAged promotes local pending entries older than the grace period to
// confirmed. The underlying ledger finalizes blocks well inside that window,
// so a still-pending entry means the indexer lags, not that the payment is
// stuck. Returns the ids that changed so the caller can persist them.
func (r *Reconciler) PromoteAged(txs []Transaction, now time.Time) []string {
	cutoff := now.Add(-r.cfg.PendingGrace)
	var promoted []string

	for i := range txs {
		if txs[i].Origin != OriginLocal {
			continue
		}
		if txs[i].Status != StatusPending {
			continue
		}
		if txs[i].Timestamp.After(cutoff) {
			continue
		}
		txs[i].Status = StatusConfirmed
		promoted = append(promoted, txs[i].ID)
	}

	if len(promoted) > 0 {
		r.logger.Info("promoted aged pending transactions", "count", len(promoted))
	}
	return promoted
}

// Reconcile runs the full pipeline: classify remote bodies, merge with the
// local log, promote aged pending entries, filter and sort. Running it twice
// on identical inputs yields identical output.
func (r *Reconciler) Reconcile(local []Transaction, remote []RemoteTx, statuses map[string]string, address string, now time.Time) []Transaction {
	classified := make([]Transaction, 0, len(remote))
	for _, tx := range remote {
		if result, ok := r.ClassifyRemote(tx, address, statuses[tx.Hash], now); ok {
			classified = append(classified, result)
		}
	}

	merged := r.Merge(local, classified)
	r.PromoteAged(merged, now)
	return merged
}

// sumFor totals the lovelace attributable to the address across the legs
func sumFor(legs []AddressValue, address string) *big.Int {
	total := new(big.Int)
	for _, leg := range legs {
		if leg.Address != address || leg.Value == nil {
			continue
		}
		total.Add(total, leg.Value)
	}
	return total
}

// sortNewestFirst orders transactions newest first, breaking timestamp ties
// by id so repeated runs produce identical output.
func sortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.After(txs[j].Timestamp)
		}
		return txs[i].ID < txs[j].ID
	})
}
