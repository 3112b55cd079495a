package session

import (
	"context"

	"github.com/masikip/notewallet/internal/platform/balance"
	"github.com/masikip/notewallet/internal/platform/history"
)

// Indexer provides the remote chain views of an account address. Both calls
// degrade to empty results internally; the controller never sees indexer
// transport errors.
type Indexer interface {
	History(ctx context.Context, address string) ([]history.RemoteTx, map[string]string)
	Metrics(ctx context.Context, address string) balance.RemoteMetrics
}

// Store is the local transaction log
type Store interface {
	Load(ctx context.Context, address string) ([]history.Transaction, error)
	Append(ctx context.Context, address string, tx history.Transaction) error
	UpdateStatus(ctx context.Context, address string, ids []string, status history.Status) error
}

// RestoreStore persists the last connected wallet across restarts
type RestoreStore interface {
	Save(ctx context.Context, walletName, address string) error
	Load(ctx context.Context) (walletName, address string, found bool, err error)
	Clear(ctx context.Context) error
}
