package koios

import (
	"context"
	"math/big"
	"time"

	"github.com/masikip/notewallet/internal/platform/balance"
	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/pkg/logger"
	"github.com/masikip/notewallet/pkg/money"
)

// IndexerAdapter exposes the Koios client through the ports the session
// controller consumes. All network failures are absorbed here: callers get
// empty history or nil metrics, never an error.
type IndexerAdapter struct {
	client *Client
	cfg    *history.Config
	logger *logger.Logger
}

// NewIndexerAdapter creates a new adapter over a Koios client
func NewIndexerAdapter(client *Client, cfg *history.Config, log *logger.Logger) *IndexerAdapter {
	if cfg == nil {
		cfg = history.DefaultConfig()
	}
	return &IndexerAdapter{
		client: client,
		cfg:    cfg,
		logger: log.WithField("component", "koios_adapter"),
	}
}

// History fetches and converts the remote transaction view for an address,
// capped to the most recent entries the history display shows.
func (a *IndexerAdapter) History(ctx context.Context, address string) ([]history.RemoteTx, map[string]string) {
	base, summaries := a.client.ListTransactions(ctx, address)
	if base == "" {
		return nil, nil
	}

	hashes := collectHashes(summaries, a.cfg.HistoryLimit)
	if len(hashes) == 0 {
		return nil, nil
	}

	infos, statuses, err := a.client.FetchDetails(ctx, base, hashes)
	if err != nil {
		a.logger.Error("failed to fetch transaction history", "address", address, "error", err)
		return nil, nil
	}

	remote := make([]history.RemoteTx, 0, len(infos))
	for _, info := range infos {
		remote = append(remote, toRemoteTx(info))
	}

	statusMap := make(map[string]string, len(statuses))
	for _, s := range statuses {
		statusMap[s.TxHash] = s.Status
	}
	return remote, statusMap
}

// Metrics runs the lighter-weight spend summary: cumulative lovelace spent
// from the account's inputs plus the fee total across the recent
// transaction set. Nil fields mean the indexer was unreachable.
func (a *IndexerAdapter) Metrics(ctx context.Context, address string) balance.RemoteMetrics {
	base, summaries := a.client.ListTransactions(ctx, address)
	if base == "" {
		return balance.RemoteMetrics{}
	}

	hashes := collectHashes(summaries, a.cfg.MetricsLimit)
	if len(hashes) == 0 {
		zero := 0.0
		return balance.RemoteMetrics{SpentAda: &zero, PendingFeesAda: &zero}
	}

	infos, _, err := a.client.FetchDetails(ctx, base, hashes)
	if err != nil {
		a.logger.Error("failed to fetch spend metrics", "address", address, "error", err)
		return balance.RemoteMetrics{}
	}

	spentLovelace := new(big.Int)
	feeLovelace := new(big.Int)

	for _, info := range infos {
		for _, input := range info.Inputs {
			if input.PaymentAddr.Bech32 != address {
				continue
			}
			if v, err := money.ParseLovelace(input.Value); err == nil {
				spentLovelace.Add(spentLovelace, v)
			}
		}
		if v, err := money.ParseLovelace(info.Fee); err == nil {
			feeLovelace.Add(feeLovelace, v)
		}
	}

	spent := money.ToAda(spentLovelace)
	fees := money.ToAda(feeLovelace)
	return balance.RemoteMetrics{SpentAda: &spent, PendingFeesAda: &fees}
}

// toRemoteTx converts a Koios transaction body into the reconciler's view
func toRemoteTx(info TxInfo) history.RemoteTx {
	tx := history.RemoteTx{
		Hash:    info.TxHash,
		Inputs:  make([]history.AddressValue, 0, len(info.Inputs)),
		Outputs: make([]history.AddressValue, 0, len(info.Outputs)),
	}
	if info.BlockTime > 0 {
		tx.BlockTime = time.Unix(info.BlockTime, 0).UTC()
	}
	if fee, err := money.ParseLovelace(info.Fee); err == nil && fee.Sign() > 0 {
		tx.Fee = fee
	}
	for _, in := range info.Inputs {
		if v, err := money.ParseLovelace(in.Value); err == nil {
			tx.Inputs = append(tx.Inputs, history.AddressValue{Address: in.PaymentAddr.Bech32, Value: v})
		}
	}
	for _, out := range info.Outputs {
		if v, err := money.ParseLovelace(out.Value); err == nil {
			tx.Outputs = append(tx.Outputs, history.AddressValue{Address: out.PaymentAddr.Bech32, Value: v})
		}
	}
	return tx
}

// collectHashes extracts up to limit usable hashes from a summary list
func collectHashes(summaries []TxSummary, limit int) []string {
	hashes := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if h := s.ResolvedHash(); h != "" {
			hashes = append(hashes, h)
		}
		if len(hashes) == limit {
			break
		}
	}
	return hashes
}
