// Package session owns the wallet connection lifecycle. One account is
// connected at a time; while connected the controller keeps its reconciled
// history and balance snapshot fresh in the background.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/masikip/notewallet/internal/platform/balance"
	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/payment"
	"github.com/masikip/notewallet/internal/platform/wallet"
	apperrors "github.com/masikip/notewallet/internal/shared/errors"
	"github.com/masikip/notewallet/pkg/logger"
)

// Snapshot is the externally visible session state at one point in time
type Snapshot struct {
	State         wallet.State          `json:"state"`
	SessionID     string                `json:"session_id,omitempty"`
	Account       *wallet.Account       `json:"account,omitempty"`
	Transactions  []history.Transaction `json:"transactions"`
	Balance       balance.Snapshot      `json:"balance"`
	LastRefreshed time.Time             `json:"last_refreshed,omitempty"`
}

// Controller is the wallet session state machine
type Controller struct {
	cfg        *Config
	registry   wallet.Registry
	indexer    Indexer
	store      Store
	restore    RestoreStore
	reconciler *history.Reconciler
	payments   *payment.Service
	logger     *logger.Logger

	mu         sync.RWMutex
	state      wallet.State
	account    *wallet.Account
	handle     wallet.Handle
	sessionID  string
	generation uint64
	txs        []history.Transaction
	metrics    balance.RemoteMetrics
	bal        balance.Snapshot
	refreshed  time.Time

	stopCh  chan struct{}
	running bool
}

// NewController creates a new session controller
func NewController(
	cfg *Config,
	registry wallet.Registry,
	indexer Indexer,
	store Store,
	restore RestoreStore,
	reconciler *history.Reconciler,
	payments *payment.Service,
	log *logger.Logger,
) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()

	return &Controller{
		cfg:        cfg,
		registry:   registry,
		indexer:    indexer,
		store:      store,
		restore:    restore,
		reconciler: reconciler,
		payments:   payments,
		logger:     log.WithField("component", "session"),
		state:      wallet.StateDisconnected,
		stopCh:     make(chan struct{}),
	}
}

// Connect discovers a wallet provider, enables it and brings the session to
// Connected. Only connect failures are user-visible; data fetches inside the
// flow degrade silently.
func (c *Controller) Connect(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.state == wallet.StateConnecting {
		c.mu.Unlock()
		return Snapshot{}, apperrors.Wrap(ErrConnectInProgress, apperrors.ErrCodeConflict, "Wallet connection already in progress")
	}
	c.state = wallet.StateConnecting
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	snapshot, err := c.connect(ctx, gen, "")
	if err != nil {
		c.abandonConnect(gen)
		return Snapshot{}, err
	}
	return snapshot, nil
}

// Restore silently reconnects the wallet persisted by a previous session.
// Any failure, including the wallet now resolving to a different address,
// resets to Disconnected without surfacing an error.
func (c *Controller) Restore(ctx context.Context) {
	walletName, savedAddr, found, err := c.restore.Load(ctx)
	if err != nil || !found {
		return
	}

	c.mu.Lock()
	if c.state != wallet.StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = wallet.StateConnecting
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("restoring wallet session", "wallet", walletName)

	if _, err := c.connectNamed(ctx, gen, walletName, savedAddr); err != nil {
		c.logger.WithError(err).Info("session restore failed, clearing saved session")
		if clearErr := c.restore.Clear(ctx); clearErr != nil {
			c.logger.WithError(clearErr).Warn("failed to clear saved session")
		}
		c.abandonConnect(gen)
	}
}

// connect picks a provider (any when preferredName is empty) and completes
// the connection under the given generation.
func (c *Controller) connect(ctx context.Context, gen uint64, preferredName string) (Snapshot, error) {
	return c.connectNamed(ctx, gen, preferredName, "")
}

func (c *Controller) connectNamed(ctx context.Context, gen uint64, name, expectedAddr string) (Snapshot, error) {
	providers, err := c.registry.ListAvailable(ctx)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to reach the wallet bridge")
	}

	var picked wallet.ProviderInfo
	if name != "" {
		found := false
		for _, p := range providers {
			if p.Name == name {
				picked, found = p, true
				break
			}
		}
		if !found {
			return Snapshot{}, apperrors.Wrap(wallet.ErrNoProvider, apperrors.ErrCodeNoWalletProvider, wallet.ErrNoProvider.Error())
		}
	} else {
		var ok bool
		picked, ok = wallet.PickProvider(providers)
		if !ok {
			return Snapshot{}, apperrors.Wrap(wallet.ErrNoProvider, apperrors.ErrCodeNoWalletProvider, wallet.ErrNoProvider.Error())
		}
	}

	handle, err := c.registry.Enable(ctx, picked.Name)
	if err != nil {
		if wallet.IsDeclined(err) {
			return Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeWalletRejected, "Wallet connection was rejected")
		}
		return Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to enable the wallet")
	}

	address, err := wallet.ResolveAccountAddress(ctx, handle, c.logger)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Wallet reported no usable address")
	}

	if expectedAddr != "" && address != expectedAddr {
		c.logger.Info("restored wallet resolves to a different address, resetting",
			"wallet", picked.Name)
		return Snapshot{}, ErrSuperseded
	}

	account := wallet.Account{
		Address:     address,
		WalletName:  picked.Name,
		ConnectedAt: time.Now().UTC(),
	}

	data := c.refreshData(ctx, address, handle)

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale connect result", "wallet", picked.Name)
		return Snapshot{}, ErrSuperseded
	}
	c.state = wallet.StateConnected
	c.account = &account
	c.handle = handle
	c.sessionID = uuid.NewString()
	c.applyDataLocked(data)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.restore.Save(ctx, account.WalletName, account.Address); err != nil {
		c.logger.WithError(err).Warn("failed to persist session for restore")
	}

	c.logger.Info("wallet connected", "wallet", account.WalletName, "session_id", snapshot.SessionID)
	return snapshot, nil
}

// abandonConnect resets a failed connect back to Disconnected unless another
// connect has already taken over.
func (c *Controller) abandonConnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen && c.state == wallet.StateConnecting {
		c.state = wallet.StateDisconnected
	}
}

// Disconnect drops the active session and forgets the persisted restore state
func (c *Controller) Disconnect(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	c.state = wallet.StateDisconnected
	c.account = nil
	c.handle = nil
	c.sessionID = ""
	c.txs = nil
	c.metrics = balance.RemoteMetrics{}
	c.bal = balance.Snapshot{}
	c.refreshed = time.Time{}
	c.mu.Unlock()

	if err := c.restore.Clear(ctx); err != nil {
		c.logger.WithError(err).Warn("failed to clear saved session")
	}
	c.logger.Info("wallet disconnected")
}

// Status returns the current session snapshot
func (c *Controller) Status() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Pay executes a note-operation payment through the connected wallet and
// folds the resulting pending entry into the session view.
func (c *Controller) Pay(ctx context.Context, req payment.Request) (history.Transaction, error) {
	c.mu.RLock()
	state := c.state
	handle := c.handle
	var account wallet.Account
	if c.account != nil {
		account = *c.account
	}
	gen := c.generation
	c.mu.RUnlock()

	if state != wallet.StateConnected || handle == nil {
		return history.Transaction{}, apperrors.Wrap(wallet.ErrNotConnected, apperrors.ErrCodeNotConnected, "Connect a wallet before paying")
	}

	w, ok := handle.(payment.Wallet)
	if !ok {
		return history.Transaction{}, apperrors.Internal("wallet does not support payments", nil)
	}

	tx, err := c.payments.Send(ctx, w, account, req)
	if err != nil {
		return history.Transaction{}, err
	}

	c.mu.Lock()
	if c.generation == gen && c.state == wallet.StateConnected {
		c.txs = append([]history.Transaction{tx}, c.txs...)
		c.bal = balance.Compute(c.txs, c.metrics)
		c.bal.WalletBalanceAda = nil // stale until the next refresh
	}
	c.mu.Unlock()

	return tx, nil
}

// Run drives the periodic refresh of a connected session. It blocks until
// the context is cancelled or Stop is called.
func (c *Controller) Run(ctx context.Context) {
	if !c.cfg.RefreshEnabled {
		c.logger.Info("session refresh is disabled")
		return
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.logger.Info("starting session refresh loop", "refresh_interval", c.cfg.RefreshInterval)

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("session refresh stopping (context done)")
			return
		case <-c.stopCh:
			c.logger.Info("session refresh stopping (stop signal)")
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Stop stops the refresh loop
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	close(c.stopCh)
	c.running = false
}

// Refresh re-runs one reconciliation pass for the connected account
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.RLock()
	state := c.state
	handle := c.handle
	var address string
	if c.account != nil {
		address = c.account.Address
	}
	gen := c.generation
	c.mu.RUnlock()

	if state != wallet.StateConnected || address == "" {
		return
	}

	data := c.refreshData(ctx, address, handle)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.state != wallet.StateConnected {
		return
	}
	c.applyDataLocked(data)
}

// refreshResult is one reconciliation pass over local and remote state
type refreshResult struct {
	txs     []history.Transaction
	metrics balance.RemoteMetrics
	bal     balance.Snapshot
	at      time.Time
}

// refreshData loads the local log, fans out the remote queries and reduces
// everything to a fresh session view. It never fails: unreachable sources
// leave their portion empty.
func (c *Controller) refreshData(ctx context.Context, address string, handle wallet.Handle) refreshResult {
	now := time.Now().UTC()

	local, err := c.store.Load(ctx, address)
	if err != nil {
		c.logger.WithError(err).Warn("failed to load local transaction log")
		local = nil
	}

	var (
		remote   []history.RemoteTx
		statuses map[string]string
		metrics  balance.RemoteMetrics
		utxos    []wallet.Utxo
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		remote, statuses = c.indexer.History(gCtx, address)
		return nil
	})
	g.Go(func() error {
		metrics = c.indexer.Metrics(gCtx, address)
		return nil
	})
	if handle != nil {
		g.Go(func() error {
			var utxoErr error
			utxos, utxoErr = handle.GetUtxos(gCtx)
			if utxoErr != nil {
				c.logger.WithError(utxoErr).Warn("failed to fetch wallet utxos")
				utxos = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	if promoted := c.reconciler.PromoteAged(local, now); len(promoted) > 0 {
		if err := c.store.UpdateStatus(ctx, address, promoted, history.StatusConfirmed); err != nil {
			c.logger.WithError(err).Warn("failed to persist promoted transactions")
		}
	}

	merged := c.reconciler.Reconcile(local, remote, statuses, address, now)

	bal := balance.Compute(merged, metrics)
	bal.WalletBalanceAda = balance.WalletBalanceAda(utxos)

	return refreshResult{txs: merged, metrics: metrics, bal: bal, at: now}
}

func (c *Controller) applyDataLocked(data refreshResult) {
	c.txs = data.txs
	c.metrics = data.metrics
	c.bal = data.bal
	c.refreshed = data.at
}

func (c *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		State:         c.state,
		SessionID:     c.sessionID,
		Transactions:  c.txs,
		Balance:       c.bal,
		LastRefreshed: c.refreshed,
	}
	if c.account != nil {
		account := *c.account
		snapshot.Account = &account
	}
	return snapshot
}
